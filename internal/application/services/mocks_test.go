package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory DescriptorSource.
type fakeSource struct {
	err  error
	docs []ports.RawDescriptor
}

func (f *fakeSource) Read(context.Context) ([]ports.RawDescriptor, error) {
	return f.docs, f.err
}

// rawDoc encodes a descriptor as a RawDescriptor rooted at /pkgs/<name>/<version>.
func rawDoc(t *testing.T, doc entities.Descriptor) ports.RawDescriptor {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	root := "/pkgs/" + doc.Name + "/" + doc.Version
	return ports.RawDescriptor{
		Source: root + "/package.yaml",
		Root:   root,
		JSON:   data,
		Line:   1,
	}
}

func sourceOf(t *testing.T, docs ...entities.Descriptor) *fakeSource {
	t.Helper()
	src := &fakeSource{}
	for _, d := range docs {
		src.docs = append(src.docs, rawDoc(t, d))
	}
	return src
}

// fakeValidator rejects documents containing a marker string.
type fakeValidator struct {
	reject string
}

func (f *fakeValidator) Validate(document []byte) error {
	if f.reject != "" && strings.Contains(string(document), f.reject) {
		return &schemaError{}
	}
	return nil
}

type schemaError struct{}

func (e *schemaError) Error() string { return "schema says no" }

// fakeLockRepo stores lockfiles in memory.
type fakeLockRepo struct {
	mu    sync.Mutex
	locks map[string]*entities.Lockfile
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[string]*entities.Lockfile)}
}

func (r *fakeLockRepo) Load(_ context.Context, path string) (*entities.Lockfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[path], nil
}

func (r *fakeLockRepo) Save(_ context.Context, lock *entities.Lockfile, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[path] = lock
	return nil
}

func (r *fakeLockRepo) Exists(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.locks[path]
	return ok, nil
}

// fakeScanner reports a finding for text containing "AKIA".
type fakeScanner struct{}

func (fakeScanner) Scan(text string) []ports.SecretFinding {
	if strings.Contains(text, "AKIA") {
		return []ports.SecretFinding{{RuleID: "aws-access-token", Description: "AWS"}}
	}
	return nil
}

// captureLogger returns a logger writing text records into buf.
func captureLogger(buf io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
