package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two guards in a row returning the same value can be merged with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// stdout carries MCP frames in stdio mode; only cmd/ may write to it.
func stdoutWrites(m dsl.Matcher) {
	m.Match(`fmt.Print($*_)`, `fmt.Printf($*_)`, `fmt.Println($*_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`writes to stdout corrupt the stdio transport; log through zerolog instead`)

	m.Match(`os.Stdout`).
		Where(!m.File().PkgPath.Matches(`/cmd/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`os.Stdout is reserved for the stdio transport outside cmd/`)

	m.Match(`log.Print($*_)`, `log.Printf($*_)`, `log.Println($*_)`).
		Report(`use the injected zerolog.Logger`)
}

// Backend calls must carry the configured timeout and context.
func httpClients(m dsl.Matcher) {
	m.Match(`http.DefaultClient`).
		Report(`http.DefaultClient has no timeout; use the configured wcc client`)

	m.Match(`http.Get($*_)`, `http.Post($*_)`, `http.Head($*_)`, `http.PostForm($*_)`).
		Report(`package-level http helpers use http.DefaultClient and ignore context`)

	m.Match(`http.NewRequest($method, $url, $body)`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`use http.NewRequestWithContext so cancellation reaches the backend`).
		Suggest(`http.NewRequestWithContext(ctx, $method, $url, $body)`)
}
