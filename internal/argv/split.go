package argv

import "strings"

// SplitWindows tokenizes a command line using the Windows quoting rules of
// CommandLineToArgvW:
//
//   - arguments are separated by spaces or tabs outside quotes
//   - 2n backslashes before a quote yield n backslashes and toggle quoting
//   - 2n+1 backslashes before a quote yield n backslashes and a literal quote
//   - backslashes not followed by a quote are literal
//   - inside quotes, "" yields a literal quote and ends the quoted section
func SplitWindows(cmdline string) []string {
	args := []string{}
	rest := cmdline
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return args
		}
		var arg string
		arg, rest = nextWindowsArg(rest)
		args = append(args, arg)
	}
}

func nextWindowsArg(s string) (arg, rest string) {
	var b strings.Builder
	quoted := false
	slashes := 0

	flushSlashes := func(n int) {
		b.WriteString(strings.Repeat(`\`, n))
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			slashes++
			continue

		case c == '"':
			flushSlashes(slashes / 2)
			if slashes%2 == 1 {
				b.WriteByte('"')
			} else {
				if quoted && i+1 < len(s) && s[i+1] == '"' {
					b.WriteByte('"')
					i++
				}
				quoted = !quoted
			}
			slashes = 0
			continue

		case (c == ' ' || c == '\t') && !quoted:
			flushSlashes(slashes)
			return b.String(), s[i+1:]
		}

		flushSlashes(slashes)
		slashes = 0
		b.WriteByte(c)
	}

	flushSlashes(slashes)
	return b.String(), ""
}
