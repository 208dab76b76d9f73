package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello,  World!", "hello world"},
		{"Siapa presiden pertama Indonesia?", "siapa presiden pertama indonesia"},
		{"siapa PRESIDEN pertama   indonesia?", "siapa presiden pertama indonesia"},
		{"Ibukota Jepang adalah apa?", "ibukota jepang adalah apa"},
		{"harga---tiket\t(pesawat)", "harga tiket pesawat"},
		{"Déjà Vu??", "deja vu"},
		{"Ｈａｌｏ！", "halo"}, // full-width compatibility characters fold
		{"snake_case_input", "snake case input"},
		{"  padded  ", "padded"},
		{"", ""},
		{"!!!???", ""},
		{"100% benar", "100 benar"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello,  World!",
		"Siapa presiden pertama Indonesia?",
		"Déjà Vu??",
		"Ｈａｌｏ！",
		"ＫＵＩＳ：ｓｉａｐａ？",
		"",
		"plain text already normal",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeCompact(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Ibu kota_Jepang", "ibukotajepang"},
		{"siapa presiden", "siapapresiden"},
		{"one", "one"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCompact(tt.input); got != tt.want {
			t.Errorf("NormalizeCompact(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
