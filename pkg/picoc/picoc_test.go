package picoc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corytodd/picoc/pkg/picoc"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	rt := picoc.Initialize(picoc.Options{Stdout: &out, Stdin: strings.NewReader("")})
	defer rt.Cleanup()

	require.NoError(t, rt.IncludeAllSystemHeaders())
	require.NoError(t, rt.Parse("<test>", src))

	code, err := rt.CallMain("<test>", nil)
	require.NoError(t, err)
	return out.String(), code
}

func TestHelloWorld(t *testing.T) {
	out, code := run(t, `
#include <stdio.h>
int main(void) {
    printf("hello, %s!\n", "picoc");
    return 0;
}
`)
	require.Equal(t, "hello, picoc!\n", out)
	require.Equal(t, 0, code)
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
int main(void) {
    int a = 2 + 3 * 4;
    int b = (2 + 3) * 4;
    printf("%d %d\n", a, b);
    return 0;
}
`)
	require.Equal(t, "14 20\n", out)
}

func TestRecursiveFunction(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
int fib(int n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
}
int main(void) {
    printf("%d\n", fib(10));
    return 0;
}
`)
	require.Equal(t, "55\n", out)
}

func TestForWhileDoWhileLoops(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
int main(void) {
    int i;
    for (i = 0; i < 3; i++) printf("%d", i);
    printf(" ");

    i = 0;
    while (i < 3) {
        printf("%d", i);
        i++;
    }
    printf(" ");

    i = 0;
    do {
        printf("%d", i);
        i++;
    } while (i < 3);
    printf("\n");
    return 0;
}
`)
	require.Equal(t, "012 012 012\n", out)
}

func TestBreakAndContinue(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
int main(void) {
    int i;
    for (i = 0; i < 10; i++) {
        if (i == 5) break;
        if (i % 2 == 0) continue;
        printf("%d", i);
    }
    printf("\n");
    return 0;
}
`)
	require.Equal(t, "13\n", out)
}

func TestSwitchStatement(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
void classify(int n) {
    switch (n) {
        case 1:
            printf("one ");
            break;
        case 2:
        case 3:
            printf("two-or-three ");
            break;
        default:
            printf("other ");
    }
}
int main(void) {
    classify(1);
    classify(2);
    classify(3);
    classify(9);
    printf("\n");
    return 0;
}
`)
	require.Equal(t, "one two-or-three two-or-three other \n", out)
}

func TestStructsAndPointers(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
struct point {
    int x;
    int y;
};
int sum_point(struct point *p) {
    return p->x + p->y;
}
int main(void) {
    struct point p;
    p.x = 3;
    p.y = 4;
    printf("%d\n", sum_point(&p));
    return 0;
}
`)
	require.Equal(t, "7\n", out)
}

func TestArraysAndStrings(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
#include <string.h>
int main(void) {
    int arr[5];
    int i;
    for (i = 0; i < 5; i++) arr[i] = i * i;
    for (i = 0; i < 5; i++) printf("%d ", arr[i]);
    printf("\n");

    char buf[32];
    strcpy(buf, "picoc");
    strcat(buf, "!");
    printf("%s %d\n", buf, strlen(buf));
    return 0;
}
`)
	require.Equal(t, "0 1 4 9 16 \npicoc! 6\n", out)
}

func TestGotoLabel(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
int main(void) {
    int i = 0;
top:
    if (i < 3) {
        printf("%d", i);
        i++;
        goto top;
    }
    printf("\n");
    return 0;
}
`)
	require.Equal(t, "012\n", out)
}

func TestEnumAndUnion(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
enum color { RED, GREEN, BLUE };
union cell {
    int i;
    float f;
};
int main(void) {
    enum color c = GREEN;
    union cell cl;
    cl.i = 42;
    printf("%d %d\n", c, cl.i);
    return 0;
}
`)
	require.Equal(t, "1 42\n", out)
}

func TestMathLibrary(t *testing.T) {
	out, _ := run(t, `
#include <stdio.h>
#include <math.h>
int main(void) {
    printf("%g\n", sqrt(16.0));
    return 0;
}
`)
	require.Equal(t, "4\n", out)
}

func TestArgvPassthrough(t *testing.T) {
	var out bytes.Buffer
	rt := picoc.Initialize(picoc.Options{Stdout: &out, Stdin: strings.NewReader("")})
	defer rt.Cleanup()

	require.NoError(t, rt.IncludeAllSystemHeaders())
	require.NoError(t, rt.Parse("<test>", `
#include <stdio.h>
int main(int argc, char **argv) {
    printf("%d %s %s\n", argc, argv[0], argv[1]);
    return 0;
}
`))

	code, err := rt.CallMain("prog", []string{"first"})
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "2 prog first\n", out.String())
}

func TestExitSetsExitCode(t *testing.T) {
	out, code := run(t, `
#include <stdlib.h>
#include <stdio.h>
int main(void) {
    printf("before\n");
    exit(7);
    printf("never\n");
    return 0;
}
`)
	require.Equal(t, "before\n", out)
	require.Equal(t, 7, code)
}

func TestFatalErrorReported(t *testing.T) {
	var out bytes.Buffer
	rt := picoc.Initialize(picoc.Options{Stdout: &out, Stdin: strings.NewReader("")})
	defer rt.Cleanup()

	require.NoError(t, rt.IncludeAllSystemHeaders())
	require.NoError(t, rt.Parse("<test>", `
int main(void) {
    return undefined_function();
}
`))

	_, err := rt.CallMain("<test>", nil)
	require.Error(t, err)
}
