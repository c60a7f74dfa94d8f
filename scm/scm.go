// Package scm derives the source control metadata of published packages from
// the git work tree of a project.
package scm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

const DefaultRemote = "origin"

var ErrNoRemote = errors.New("no remote URL")

// Discover finds the git repository containing dir and derives the SCM
// metadata from the URL of remote. The empty remote is [DefaultRemote].
func Discover(dir, remote string) (srcsetkore.SCM, error) {
	if remote == "" {
		remote = DefaultRemote
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return srcsetkore.SCM{}, fmt.Errorf("open git repository at '%s': %w", dir, err)
	}
	rem, err := repo.Remote(remote)
	if err != nil {
		return srcsetkore.SCM{}, fmt.Errorf("git remote '%s': %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return srcsetkore.SCM{}, fmt.Errorf("git remote '%s': %w", remote, ErrNoRemote)
	}
	return FromURL(urls[0])
}

// FromURL derives the SCM metadata from a git clone URL in any form git
// accepts, including scp-like URLs.
func FromURL(raw string) (srcsetkore.SCM, error) {
	if raw == "" {
		return srcsetkore.SCM{}, ErrNoRemote
	}
	ep, err := transport.NewEndpoint(raw)
	if err != nil {
		return srcsetkore.SCM{}, fmt.Errorf("git URL '%s': %w", raw, err)
	}
	switch ep.Protocol {
	case "file":
		return srcsetkore.SCM{
			Connection:          "scm:git:" + ep.String(),
			DeveloperConnection: "scm:git:" + ep.String(),
		}, nil
	}
	path := strings.Trim(ep.Path, "/")
	repoPath := strings.TrimSuffix(path, ".git")
	host := ep.Host
	if (ep.Protocol == "http" || ep.Protocol == "https") && ep.Port != 0 &&
		ep.Port != 80 && ep.Port != 443 {
		host = fmt.Sprintf("%s:%d", ep.Host, ep.Port)
	}
	return srcsetkore.SCM{
		Connection:          fmt.Sprintf("scm:git:https://%s/%s.git", host, repoPath),
		DeveloperConnection: fmt.Sprintf("scm:git:ssh://git@%s/%s.git", ep.Host, repoPath),
		URL:                 fmt.Sprintf("https://%s/%s", host, repoPath),
	}, nil
}
