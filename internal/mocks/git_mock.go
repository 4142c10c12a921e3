package mocks

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/mock"
)

// MockGitClient mocks the git.Client interface
type MockGitClient struct {
	mock.Mock
}

// PlainCloneContext mocks the git clone operation
func (m *MockGitClient) PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error) {
	args := m.Called(ctx, path, isBare, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.Repository), args.Error(1)
}

// NewMockGitClient creates a MockGitClient whose expectations are asserted
// when the test ends
func NewMockGitClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGitClient {
	m := &MockGitClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ExpectClone makes the next clone create files (relative path to content)
// under the clone path and return repo
func (m *MockGitClient) ExpectClone(files map[string]string, repo *git.Repository, err error) *mock.Call {
	return m.On("PlainCloneContext", mock.Anything, mock.Anything, false, mock.Anything).
		Run(func(args mock.Arguments) {
			if err != nil {
				return
			}
			root := args.String(1)
			for rel, content := range files {
				target := filepath.Join(root, filepath.FromSlash(rel))
				if os.MkdirAll(filepath.Dir(target), 0755) == nil {
					_ = os.WriteFile(target, []byte(content), 0644)
				}
			}
		}).
		Return(repo, err)
}
