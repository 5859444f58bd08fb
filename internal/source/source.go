// Package source resolves audit targets into Solidity documents. A target
// is a local file or directory, a git URL, or an on-chain contract address.
package source

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Document is one Solidity file ready for auditing.
type Document struct {
	// Name identifies the document in reports: a relative path for local
	// and git targets, the contract name for on-chain targets.
	Name    string
	Content string
}

// Kind classifies an audit target.
type Kind string

const (
	KindLocal   Kind = "local"
	KindGit     Kind = "git"
	KindAddress Kind = "address"
)

// Detect classifies a target string. Existing filesystem paths win over
// everything; a 0x-prefixed hex address beats a git URL.
func Detect(target string) Kind {
	if _, err := os.Stat(target); err == nil {
		return KindLocal
	}
	if common.IsHexAddress(target) {
		return KindAddress
	}
	if isGitURL(target) {
		return KindGit
	}
	return KindLocal
}

func isGitURL(target string) bool {
	if strings.HasPrefix(target, "git@") {
		return true
	}
	if !strings.Contains(target, "://") {
		return false
	}
	return strings.HasSuffix(target, ".git") ||
		strings.Contains(target, "github.com/") ||
		strings.Contains(target, "gitlab.com/") ||
		strings.Contains(target, "bitbucket.org/")
}
