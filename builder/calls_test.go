package builder

import (
	"reflect"
	"testing"
)

func TestCallSites(t *testing.T) {
	t.Run("OrderAndDedup", func(t *testing.T) {
		body := `double a = helper(x);
double b = helper(y) + other(a);
return combine(a, b);`
		got := callSites(body)
		want := []string{"helper", "other", "combine"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("callSites = %v, want %v", got, want)
		}
	})

	t.Run("KeywordsAreNotCalls", func(t *testing.T) {
		body := `for (int i = 0; i < n; i++) {
    if (x > 0) {
        while (check(x)) { x -= 1; }
    }
}
return (x);`
		got := callSites(body)
		want := []string{"check"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("callSites = %v, want %v", got, want)
		}
	})

	t.Run("CommentsAndStringsIgnored", func(t *testing.T) {
		body := `// call hidden(x) in a comment
/* another ghost(y) here */
printf("formatted(%d) output", fake(3));
real(x);`
		got := callSites(body)
		want := []string{"printf", "fake", "real"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("callSites = %v, want %v", got, want)
		}
	})

	t.Run("SpaceBeforeParen", func(t *testing.T) {
		got := callSites("spaced (x);")
		want := []string{"spaced"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("callSites = %v, want %v", got, want)
		}
	})

	t.Run("CastIsNotACall", func(t *testing.T) {
		got := callSites("double y = (double)(x);")
		if len(got) != 0 {
			t.Errorf("cast reported as call: %v", got)
		}
	})
}

func TestBuiltins(t *testing.T) {
	for _, name := range []string{"sqrt", "fmax", "abs", "declare", "local_barrier", "printf"} {
		if !isBuiltin(name) {
			t.Errorf("%s should be a builtin", name)
		}
	}
	for _, name := range []string{"helper", "axpy", "sqrtish"} {
		if isBuiltin(name) {
			t.Errorf("%s should not be a builtin", name)
		}
	}
}
