package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/jawab/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/mcp"
)

func cmdAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8420", "server address (UDP/QUIC)")
	insecure := fs.Bool("insecure", true, "skip TLS verification (dev certs)")
	fs.Parse(args)

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: jawab ask [--addr host:port] <question>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(*insecure))
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	res, err := c.CallTool(ctx, "ask_question", map[string]any{"question": question})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ask_question: %v\n", err)
		os.Exit(1)
	}

	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			fmt.Println(tc.Text)
		}
	}
	if res.IsError {
		os.Exit(1)
	}
}
