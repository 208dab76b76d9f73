package match

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "stopwords dropped",
			input: "siapa presiden pertama indonesia",
			want:  []string{"presiden", "pertama", "indonesia"},
		},
		{
			name:  "english stopwords dropped",
			input: "what is the capital of france",
			want:  []string{"capital", "france"},
		},
		{
			name:  "important word survives stopword filter",
			input: "makanan yang tidak halal",
			want:  []string{"makanan", "tidak", "halal"},
		},
		{
			name:  "short tokens dropped unless important",
			input: "cara ok membuat kue",
			want:  []string{"cara", "membuat", "kue"},
		},
		{
			name:  "important short token kept",
			input: "tak ada jawaban",
			want:  []string{"tak", "jawaban"},
		},
		{
			name:  "duplicates collapse to first occurrence",
			input: "kereta api kereta cepat",
			want:  []string{"kereta", "api", "cepat"},
		},
		{
			name:  "all stopwords",
			input: "apa yang di itu",
			want:  []string{},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	input := "jadwal kereta api jakarta bandung hari ini"
	first := ExtractKeywords(input)
	for i := 0; i < 10; i++ {
		if got := ExtractKeywords(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: ExtractKeywords = %v, want %v", i, got, first)
		}
	}
}

func TestTopLongestKeywords(t *testing.T) {
	kws := []string{"api", "kereta", "jadwal", "jakarta"}

	got := TopLongestKeywords(kws, 2)
	want := []string{"jakarta", "kereta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopLongestKeywords(n=2) = %v, want %v", got, want)
	}

	// Ties keep first-seen order.
	got = TopLongestKeywords([]string{"makan", "minum", "tidur"}, 2)
	want = []string{"makan", "minum"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopLongestKeywords ties = %v, want %v", got, want)
	}

	if got := TopLongestKeywords(kws, 10); len(got) != len(kws) {
		t.Errorf("n larger than input: got %d keywords, want %d", len(got), len(kws))
	}
	if got := TopLongestKeywords(nil, 3); got != nil {
		t.Errorf("nil input: got %v, want nil", got)
	}
	if got := TopLongestKeywords(kws, 0); got != nil {
		t.Errorf("n=0: got %v, want nil", got)
	}
}

func TestIsImportantWord(t *testing.T) {
	for _, w := range []string{"tidak", "bukan", "tak", "not"} {
		if !IsImportantWord(w) {
			t.Errorf("IsImportantWord(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"presiden", "yang", ""} {
		if IsImportantWord(w) {
			t.Errorf("IsImportantWord(%q) = true, want false", w)
		}
	}
}
