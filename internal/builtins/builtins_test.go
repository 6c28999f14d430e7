package builtins

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/derrell/LearnCS-sub002/internal/draw"
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
)

// runC runs src with all headers and the given closed input. It returns
// the program output and the final result.
func runC(t *testing.T, src, input string) (string, interp.Result, *Libraries) {
	t.Helper()
	file, err := syntax.ParseFile("prog.c", strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	libs := New(Options{})
	var out bytes.Buffer
	m, err := interp.New(file, interp.Config{Registry: libs.Registry(), Stdout: &out, MaxSteps: 100000})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m.Feed(input)
	m.CloseInput()
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Done {
		t.Fatalf("program paused: %+v", res.Pause)
	}
	return out.String(), res, libs
}

func TestOutput(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		want  string
	}{
		{"printf ints", `printf("%d %5d|%-4d|%05d %+d\n", 42, 7, 3, -12, 9);`, "", "42     7|3   |-0012 +9\n"},
		{"printf unsigned", `printf("%u %x %X %o %#x\n", -1, 255, 255, 8, 16);`, "", "4294967295 ff FF 10 0x10\n"},
		{"printf chars", `printf("%c%c %s|%5s|%-3s|%.2s\n", 'o', 'k', "str", "ab", "c", "xyz");`, "", "ok str|   ab|c  |xy\n"},
		{"printf floats", `printf("%f %.2f %8.3f %e %g\n", 1.5, 3.14159, 2.0, 1234.5, 0.25);`, "", "1.500000 3.14    2.000 1.234500e+03 0.25\n"},
		{"printf star", `printf("[%*d] [%.*f]\n", 4, 1, 1, 2.25);`, "", "[   1] [2.2]\n"},
		{"printf percent", `printf("100%%\n");`, "", "100%\n"},
		{"printf null string", `char *p = NULL; printf("%s\n", p);`, "", "(null)\n"},
		{"puts putchar", `puts("hi"); putchar('!'); putchar('\n');`, "", "hi\n!\n"},
		{"sprintf", `char b[32]; int n = sprintf(b, "%d-%s", 12, "ab"); printf("%s %d\n", b, n);`, "", "12-ab 5\n"},
		{"getchar", `int c; while ((c = getchar()) != EOF) putchar(toupper(c));`, "abc\n", "ABC\n"},
		{"scanf", `int a; double d; char w[16]; int n = scanf("%d %lf %s", &a, &d, w);
			printf("%d %d %.1f %s\n", n, a, d, w);`, "  12\n3.5 word rest", "3 12 3.5 word\n"},
		{"scanf stops", `int a = 5, b = 6; int n = scanf("%d,%d", &a, &b); printf("%d %d %d\n", n, a, b);`, "1;2", "1 1 6\n"},
		{"scanf eof", `int a; printf("%d\n", scanf("%d", &a));`, "   ", "-1\n"},
		{"scanf char", `char c1, c2; scanf("%c%c", &c1, &c2); printf("[%c][%c]\n", c1, c2);`, "x y", "[x][ ]\n"},
		{"strings", `char a[20]; strcpy(a, "foo"); strcat(a, "bar");
			printf("%s %u %d %d %d\n", a, strlen(a), strcmp(a, "foobar"), strcmp("a", "b") < 0, strcmp("b", "a") > 0);`,
			"", "foobar 6 0 1 1\n"},
		{"strncpy pads", `char a[6]; memset(a, 'x', 6); strncpy(a, "ab", 4); printf("%d %d %c %c\n", a[2], a[3], a[4], a[1]);`, "", "0 0 x b\n"},
		{"ctype", `printf("%d%d%d%d%d%d %c%c\n", isdigit('7'), isalpha('7'), isspace('\t'), isupper('Q'), islower('Q'), isalnum('_'), tolower('Q'), toupper('3'));`, "", "101100 q3\n"},
		{"math", `printf("%.3f %.0f %.1f %.1f %.1f %.1f\n", sqrt(2.0), pow(2, 10), fabs(-1.5), floor(-1.5), ceil(1.2), fmod(7.5, 2));`, "", "1.414 1024 1.5 -2.0 2.0 1.5\n"},
		{"atoi abs", `printf("%d %d %d %d\n", atoi("  -42xyz"), atoi("abc"), abs(-9), abs(4));`, "", "-42 0 9 4\n"},
		{"malloc free", `int *p = malloc(4 * sizeof(int)); int i; for (i = 0; i < 4; i++) p[i] = i * i;
			printf("%d %d\n", p[3], p != NULL); free(p); free(NULL);`, "", "9 1\n"},
		{"read inside heap value", `int *p = malloc(4); char *c; *p = 0x11223344; c = (char *)p; printf("%x\n", *(int *)(c + 2));`, "", "11223344\n"},
		{"calloc zeroes", `int *p = calloc(3, sizeof(int)); printf("%d%d%d\n", p[0], p[1], p[2]);`, "", "000\n"},
		{"rand deterministic", `int a; srand(1); a = rand(); srand(1); printf("%d %d\n", a == rand(), rand() <= RAND_MAX);`, "", "1 1\n"},
		{"getInt", `int a = getInt(); int b = getInt(); printf("%d\n", a + b);`, "40\n  2\n", "42\n"},
		{"getDouble", `printf("%.2f\n", getDouble() * 2);`, "1.25\n", "2.50\n"},
		{"getString", `char b[5]; char *p = getString(b, 5); printf("[%s] %d\n", b, p == b); getString(b, 5); printf("[%s]\n", b);
			printf("%d\n", getString(b, 5) == NULL);`, "toolongline\nok\n", "[tool] 1\n[ok]\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <ctype.h>
#include <math.h>
#include <learncs.h>
int main(void) {
` + tt.src + `
	return 0;
}`
			out, res, _ := runC(t, src, tt.input)
			if res.Err != nil {
				t.Fatalf("run: %v", res.Err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		want  string
		line  int
	}{
		{"getInt not an integer", "#include <learncs.h>\nint main(void) {\n\treturn getInt();\n}", "abc\n", "getInt: not an integer", 3},
		{"getInt end of input", "#include <learncs.h>\nint main(void) {\n\treturn getInt();\n}", "", "getInt: end of input", 3},
		{"getDouble", "#include <learncs.h>\nint main(void) {\n\tdouble d = getDouble();\n\treturn 0;\n}", "x\n", "getDouble: not a number", 3},
		{"assert", "#include <assert.h>\nint main(void) {\n\tint x = 1;\n\tassert(x == 2);\n\treturn 0;\n}", "", "assert: assertion failed", 4},
		{"free twice", "#include <stdlib.h>\nint main(void) {\n\tint *p = malloc(4);\n\tfree(p);\n\tfree(p);\n\treturn 0;\n}", "", "free: invalid pointer", 5},
		{"bad conversion", "#include <stdio.h>\nint main(void) {\n\tprintf(\"%y\", 1);\n\treturn 0;\n}", "", "printf: unknown conversion '%y'", 3},
		{"missing argument", "#include <stdio.h>\nint main(void) {\n\tprintf(\"%d %d\", 1);\n\treturn 0;\n}", "", "printf: too few arguments", 3},
		{"unknown colour", "#include <draw.h>\nint main(void) {\n\tdrawColor(\"mauvish\");\n\treturn 0;\n}", "", "drawColor: unknown colour", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, _ := runC(t, tt.src, tt.input)
			if res.Err == nil {
				t.Fatal("program succeeded")
			}
			if !strings.Contains(res.Err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", res.Err, tt.want)
			}
			var rt *interp.RuntimeError
			if !errors.As(res.Err, &rt) {
				t.Fatalf("error is %T, want *interp.RuntimeError", res.Err)
			}
			if rt.Line != tt.line {
				t.Errorf("line = %d, want %d", rt.Line, tt.line)
			}
		})
	}
}

func TestExit(t *testing.T) {
	out, res, _ := runC(t, `#include <stdio.h>
#include <stdlib.h>
int main(void) {
	printf("before\n");
	exit(EXIT_FAILURE);
	printf("after\n");
	return 0;
}`, "")
	if res.Err != nil || res.Exit != 1 {
		t.Errorf("result = %+v, want exit status 1", res)
	}
	if out != "before\n" {
		t.Errorf("output = %q", out)
	}
}

func TestDraw(t *testing.T) {
	_, res, libs := runC(t, `#include <draw.h>
int main(void) {
	int i;
	drawInit(200, 100);
	drawColor("navy");
	for (i = 0; i < 3; i++)
		fillCircle(20 + i * 40, 50, 10);
	drawRGB(255, 0, 0);
	drawLine(0, 0, 199, 99);
	drawText(5, 95, "done");
	return 0;
}`, "")
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	cv := libs.Canvas
	if w, h := cv.Size(); w != 200 || h != 100 {
		t.Errorf("size = %dx%d", w, h)
	}
	shapes := cv.Shapes()
	if len(shapes) != 5 {
		t.Fatalf("got %d shapes, want 5", len(shapes))
	}
	if shapes[2].Kind != draw.FillCircle || shapes[2].X != 100 || shapes[2].R != 10 {
		t.Errorf("shape 2 = %+v", shapes[2])
	}
	if s := shapes[4]; s.Kind != draw.Text || s.Text != "done" || s.Color.R != 255 {
		t.Errorf("shape 4 = %+v", s)
	}
}

func TestRegistryHeaders(t *testing.T) {
	reg := New(Options{}).Registry()
	want := rtabi.Headers()
	got := reg.Headers()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Headers() = %v, want %v", got, want)
	}
	lib, ok := reg.Lookup("stdio.h")
	if !ok || lib.Consts["EOF"] != -1 {
		t.Errorf("stdio.h EOF = %v", lib.Consts["EOF"])
	}
}
