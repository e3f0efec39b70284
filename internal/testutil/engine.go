package testutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/scnconform/internal/hexcodec"
)

// FakeEngineEnv selects the fake engine behaviour when a test binary
// re-executes itself as the executable under test.
const FakeEngineEnv = "SCNCONFORM_FAKE_ENGINE"

// Fake engine modes.
const (
	ModeFaithful  = "faithful"  // scans like the real binary
	ModeHang      = "hang"      // never exits on its own
	ModeCrash     = "crash"     // exits 3 after printing to stderr
	ModeDiverge   = "diverge"   // method 2 reports an extra leftover byte
	ModeOneLine   = "one-line"  // prints only the parsed line
	ModeEcho      = "echo"      // copies stdin to stdout, exits 0
	ModeFailEcho  = "fail-echo" // copies stdin to stdout, exits 1
	ModeBadFormat = "bad-hex"   // prints non-hex tokens
)

// MaybeRunFakeEngine turns the current process into the fake engine when
// FakeEngineEnv is set. Call it first thing in TestMain.
func MaybeRunFakeEngine() {
	mode := os.Getenv(FakeEngineEnv)
	if mode == "" {
		return
	}
	os.Exit(RunFakeEngine(mode, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// RunFakeEngine emulates the parameterized stdin test binary:
// args are [typeCode, methodCode, format]; it scans one value from stdin,
// prints the value and the rest of the line hex encoded, one per line, and
// returns 0 on success, 1 on scan failure, 255 on bad arguments.
func RunFakeEngine(mode string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	switch mode {
	case ModeHang:
		time.Sleep(time.Hour)
		return 0
	case ModeCrash:
		fmt.Fprint(stderr, "terminate called after throwing an instance of 'std::bad_alloc'")
		return 3
	case ModeEcho, ModeFailEcho:
		_, _ = io.Copy(stdout, stdin)
		if mode == ModeFailEcho {
			return 1
		}
		return 0
	case ModeBadFormat:
		fmt.Fprintln(stdout, "zz")
		fmt.Fprintln(stdout, "")
		return 0
	}

	if len(args) != 3 {
		fmt.Fprintf(stderr, "argc must be 4, got %d", len(args)+1)
		return 255
	}
	typ, err := strconv.Atoi(args[0])
	if err != nil || (typ != 0 && typ != 1) {
		fmt.Fprintf(stderr, "Invalid value for the type parameter (got %s)", args[0])
		return 255
	}
	method, err := strconv.Atoi(args[1])
	if err != nil || method < 0 || method > 3 {
		fmt.Fprintf(stderr, "Invalid value for the method parameter (got %s)", args[1])
		return 255
	}

	r := bufio.NewReader(stdin)
	var value string
	var ok bool
	if typ == 0 {
		value, ok = scanWord(r)
	} else {
		value, ok = scanInt(r)
	}
	if ok {
		fmt.Fprint(stdout, hexcodec.Encode([]byte(value)))
	} else {
		fmt.Fprint(stderr, "Error: No match\n")
	}
	fmt.Fprintln(stdout)

	if mode == ModeOneLine {
		return exitFor(ok)
	}

	rest, _ := r.ReadString('\n')
	rest = strings.TrimSuffix(rest, "\n")
	if mode == ModeDiverge && method == 2 {
		rest += "!"
	}
	fmt.Fprint(stdout, hexcodec.Encode([]byte(rest)))
	fmt.Fprintln(stdout)

	return exitFor(ok)
}

func exitFor(ok bool) int {
	if ok {
		return 0
	}
	return 1
}

func skipSpace(r *bufio.Reader) {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return
		}
		if !isSpace(c) {
			_ = r.UnreadByte()
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func scanWord(r *bufio.Reader) (string, bool) {
	skipSpace(r)
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			break
		}
		if isSpace(c) {
			_ = r.UnreadByte()
			break
		}
		b.WriteByte(c)
	}
	return b.String(), b.Len() > 0
}

func scanInt(r *bufio.Reader) (string, bool) {
	skipSpace(r)
	var b strings.Builder
	if p, err := r.Peek(1); err == nil && (p[0] == '+' || p[0] == '-') {
		p, err = r.Peek(2)
		if err != nil || p[1] < '0' || p[1] > '9' {
			return "", false
		}
		c, _ := r.ReadByte()
		b.WriteByte(c)
	}
	for {
		c, err := r.ReadByte()
		if err != nil {
			break
		}
		if c < '0' || c > '9' {
			_ = r.UnreadByte()
			break
		}
		b.WriteByte(c)
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}
