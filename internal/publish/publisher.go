// Package publish writes generated artifacts to a hosting repository and
// enables static-page publishing.
package publish

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"

	"github.com/briefpress/briefpress/internal/domain"
)

// repoService is the slice of the hosting REST API the publisher needs.
// *github.RepositoriesService satisfies it; tests provide fakes.
type repoService interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
	Create(ctx context.Context, org string, repo *github.Repository) (*github.Repository, *github.Response, error)
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	EnablePages(ctx context.Context, owner, repo string, pages *github.Pages) (*github.Pages, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, opts *github.CommitsListOptions) ([]*github.RepositoryCommit, *github.Response, error)
}

// Publisher creates or updates task repositories.
type Publisher struct {
	repos repoService
	owner string
}

// New creates a Publisher authenticated with the given token, publishing
// under the given account.
func New(token, username string) *Publisher {
	client := github.NewClient(nil).WithAuthToken(token)
	return &Publisher{repos: client.Repositories, owner: username}
}

// EnsureRepo locates the repository for the request, creating it on round 1.
// On round 2 a missing repository is a terminal error: a revision round
// without its round-1 repository means the initial round never happened, and
// creating one here would mask that failure.
func (p *Publisher) EnsureRepo(ctx context.Context, req *domain.TaskRequest) error {
	name := req.RepoName()

	_, resp, err := p.repos.Get(ctx, p.owner, name)
	if err == nil {
		return nil
	}
	if !isNotFound(resp) {
		return fmt.Errorf("look up repository %s: %w", name, err)
	}

	if req.Round != 1 {
		return fmt.Errorf("repository %s not found; round %d requires the round-1 repository", name, req.Round)
	}

	_, _, err = p.repos.Create(ctx, "", &github.Repository{
		Name:        github.String(name),
		Description: github.String(req.Brief),
		Private:     github.Bool(false),
		AutoInit:    github.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("create repository %s: %w", name, err)
	}
	return nil
}

// PriorDocument returns the current page document for a repository, with an
// explicit found flag. A missing file is not an error.
func (p *Publisher) PriorDocument(ctx context.Context, repoName string) (string, bool, error) {
	file, _, resp, err := p.repos.GetContents(ctx, p.owner, repoName, "index.html", nil)
	if err != nil {
		if isNotFound(resp) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetch index.html from %s: %w", repoName, err)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("decode index.html from %s: %w", repoName, err)
	}
	return content, true, nil
}

// PublishFiles writes the artifact into the repository. Round 1 additionally
// writes the license file and enables static pages. Each file write is a
// distinct commit; the reported commit SHA is the head of the default branch
// at query time, which can differ from this run's own writes if concurrent
// writes race.
func (p *Publisher) PublishFiles(ctx context.Context, req *domain.TaskRequest, art *domain.Artifact) (*domain.PublishResult, error) {
	name := req.RepoName()

	repo, _, err := p.repos.Get(ctx, p.owner, name)
	if err != nil {
		return nil, fmt.Errorf("look up repository %s: %w", name, err)
	}

	if err := p.upsertFile(ctx, name, "README.md", art.README, req.Round); err != nil {
		return nil, err
	}
	if err := p.upsertFile(ctx, name, "index.html", art.Document, req.Round); err != nil {
		return nil, err
	}

	if req.Round == 1 {
		_, _, err := p.repos.CreateFile(ctx, p.owner, name, "LICENSE", &github.RepositoryContentFileOptions{
			Message: github.String("Add MIT License"),
			Content: []byte(mitLicense(p.owner)),
		})
		if err != nil {
			return nil, fmt.Errorf("create LICENSE in %s: %w", name, err)
		}

		_, _, err = p.repos.EnablePages(ctx, p.owner, name, &github.Pages{
			Source: &github.PagesSource{
				Branch: github.String("main"),
				Path:   github.String("/"),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("enable pages for %s: %w", name, err)
		}
	}

	sha, err := p.headCommit(ctx, name)
	if err != nil {
		return nil, err
	}

	return &domain.PublishResult{
		RepoURL:   repo.GetHTMLURL(),
		CommitSHA: sha,
		PagesURL:  fmt.Sprintf("https://%s.github.io/%s/", p.owner, name),
	}, nil
}

// upsertFile updates the file when the hosting API reports an existing
// content SHA, otherwise creates it.
func (p *Publisher) upsertFile(ctx context.Context, repoName, path, content string, round int) error {
	existing, _, resp, err := p.repos.GetContents(ctx, p.owner, repoName, path, nil)
	if err != nil && !isNotFound(resp) {
		return fmt.Errorf("look up %s in %s: %w", path, repoName, err)
	}

	if existing != nil {
		opts := &github.RepositoryContentFileOptions{
			Message: github.String(fmt.Sprintf("Update %s for round %d", path, round)),
			Content: []byte(content),
			SHA:     existing.SHA,
		}
		if _, _, err := p.repos.UpdateFile(ctx, p.owner, repoName, path, opts); err != nil {
			return fmt.Errorf("update %s in %s: %w", path, repoName, err)
		}
		return nil
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(fmt.Sprintf("Add %s", path)),
		Content: []byte(content),
	}
	if _, _, err := p.repos.CreateFile(ctx, p.owner, repoName, path, opts); err != nil {
		return fmt.Errorf("create %s in %s: %w", path, repoName, err)
	}
	return nil
}

func (p *Publisher) headCommit(ctx context.Context, repoName string) (string, error) {
	commits, _, err := p.repos.ListCommits(ctx, p.owner, repoName, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", fmt.Errorf("list commits for %s: %w", repoName, err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("repository %s has no commits", repoName)
	}
	return commits[0].GetSHA(), nil
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
