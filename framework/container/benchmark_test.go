package container_test

import (
	"testing"

	"github.com/km-arc/go-container/framework/container"
)

func benchContainer(b *testing.B) *container.Container {
	b.Helper()
	c := container.New()
	if err := c.Singleton("config", newConfig); err != nil {
		b.Fatal(err)
	}
	if err := c.Singleton("db", newDatabase, "config"); err != nil {
		b.Fatal(err)
	}
	if err := c.Bind("repo", newRepo, "db"); err != nil {
		b.Fatal(err)
	}
	if err := c.Scoped("req", func([]any) (any, error) { return &testRequest{}, nil }, "db"); err != nil {
		b.Fatal(err)
	}
	return c
}

func BenchmarkRegister(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := container.New()
		_ = c.Singleton("config", newConfig)
		_ = c.Singleton("db", newDatabase, "config")
		_ = c.Bind("repo", newRepo, "db")
	}
}

func BenchmarkResolve_Singleton(b *testing.B) {
	c := benchContainer(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Resolve("db")
	}
}

func BenchmarkResolve_Transient(b *testing.B) {
	c := benchContainer(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Resolve("repo")
	}
}

func BenchmarkResolve_ScopedNewScope(b *testing.B) {
	c := benchContainer(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scope := c.BeginScope()
		_, _ = c.ResolveIn(scope, "req")
		_ = c.EndScope(scope)
	}
}

func BenchmarkValidate(b *testing.B) {
	c := benchContainer(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Validate()
	}
}
