// Package filesystem provides a small seam over os file operations so
// components touching real files can be tested with mocks.
package filesystem

import "os"

type FileSystem interface {
	Open(name string) (*os.File, error)
	Create(name string) (*os.File, error)
	ReadFile(name string) (string, error)
	WriteFile(name string, content string) error
}

type DefaultFileSystem struct{}

func (DefaultFileSystem) Open(name string) (*os.File, error) {
	return os.Open(name)
}

func (DefaultFileSystem) Create(name string) (*os.File, error) {
	return os.Create(name)
}

func (DefaultFileSystem) ReadFile(name string) (string, error) {
	content, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (DefaultFileSystem) WriteFile(name string, content string) error {
	return os.WriteFile(name, []byte(content), 0644)
}
