package credential

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func newTestStore(env map[string]string) *implStore {
	keyring.MockInit()
	return &implStore{
		service: "minutes-flow-test",
		getenv:  func(k string) string { return env[k] },
	}
}

func TestGet(t *testing.T) {
	s := newTestStore(map[string]string{OpenAIKey: "from-env"})

	got, err := s.Get(OpenAIKey)
	if err != nil || got != "from-env" {
		t.Errorf("Get() env = (%q, %v), want from-env", got, err)
	}

	if _, err := s.Get(GeminiKeys); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}

	if err := s.Set(GeminiKeys, "k1,k2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err = s.Get(GeminiKeys)
	if err != nil || got != "k1,k2" {
		t.Errorf("Get() keyring = (%q, %v), want k1,k2", got, err)
	}
}

func TestEnvOverridesKeyring(t *testing.T) {
	s := newTestStore(map[string]string{OpenAIKey: "env"})
	if err := s.Set(OpenAIKey, "stored"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(OpenAIKey); got != "env" {
		t.Errorf("Get() = %q, want env", got)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	s := newTestStore(nil)
	if err := s.Set(OpenAIKey, "  "); err == nil {
		t.Error("Set() with blank value succeeded")
	}
}

func TestResolve(t *testing.T) {
	s := newTestStore(nil)
	if err := s.Set(OpenAIKey, "stored"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		explicit string
		name     string
		want     string
	}{
		{"flag", OpenAIKey, "flag"},
		{"", OpenAIKey, "stored"},
		{"", GeminiKeys, ""},
	}
	for _, tt := range tests {
		if got := Resolve(s, tt.explicit, tt.name); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.explicit, tt.name, got, tt.want)
		}
	}
}
