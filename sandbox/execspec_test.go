package sandbox

import "testing"

func TestBuildExecSpec_Basic(t *testing.T) {
	spec, err := BuildExecSpec("/usr/bin/python3 solution.py", EnvEmpty, nil)
	if err != nil {
		t.Fatalf("BuildExecSpec() error = %v", err)
	}
	if spec.Path != "/usr/bin/python3" {
		t.Errorf("Path = %q, want /usr/bin/python3", spec.Path)
	}
	if len(spec.Args) != 2 || spec.Args[1] != "solution.py" {
		t.Errorf("Args = %v", spec.Args)
	}
	if spec.Env != nil {
		t.Errorf("Env = %v, want nil for EnvEmpty", spec.Env)
	}
}

func TestBuildExecSpec_Inherit(t *testing.T) {
	host := []string{"PATH=/usr/bin", "HOME=/root"}
	spec, err := BuildExecSpec("./a.out", EnvInherit, host)
	if err != nil {
		t.Fatalf("BuildExecSpec() error = %v", err)
	}
	if len(spec.Env) != 2 {
		t.Errorf("Env = %v, want host env copied through", spec.Env)
	}
}

func TestBuildExecSpec_EmptyCommand(t *testing.T) {
	if _, err := BuildExecSpec("   ", EnvEmpty, nil); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestBuildExecSpec_NullInString(t *testing.T) {
	if _, err := BuildExecSpec("a.out\x00--flag", EnvEmpty, nil); err == nil {
		t.Fatal("expected error for NUL byte in command")
	}
}

func TestBuildExecSpec_MultipleArgs(t *testing.T) {
	spec, err := BuildExecSpec("/bin/gcc -O2 -o sol sol.c", EnvEmpty, nil)
	if err != nil {
		t.Fatalf("BuildExecSpec() error = %v", err)
	}
	want := []string{"/bin/gcc", "-O2", "-o", "sol", "sol.c"}
	if len(spec.Args) != len(want) {
		t.Fatalf("Args = %v, want %v", spec.Args, want)
	}
	for i := range want {
		if spec.Args[i] != want[i] {
			t.Errorf("Args[%d] = %q, want %q", i, spec.Args[i], want[i])
		}
	}
}
