// Package actions maps host messages onto git invocations.
//
// A host (the MCP server, the CLI) sends a Message naming one operation.
// The Dispatcher runs the matching git command in the repository and
// answers with a Response. Operations the host only fires and forgets
// answer with an empty Response.
package actions

import (
	"github.com/goccy/go-json"

	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

// Operation names accepted in Message.Type.
const (
	OpGetGitUserAndEmail = "getGitUserAndEmail"
	OpSetGitUserAndEmail = "setGitUserAndEmail"
	OpInitRepo           = "initRepo"
	OpCloneRepo          = "cloneRepo"
	OpStage              = "stage"
	OpUnstage            = "unstage"
	OpDiscard            = "discard"
	OpCommit             = "commit"
	OpBranch             = "branch"
	OpCheckout           = "checkout"
	OpMerge              = "merge"
	OpGetLocalBranches   = "getLocalBranches"
	OpGetRemoteBranches  = "getRemoteBranches"
	OpGetRemote          = "getRemote"
	OpSetRemote          = "setRemote"
	OpFetch              = "fetch"
	OpPush               = "push"
	OpPull               = "pull"
	OpRebase             = "rebase"
	OpReset              = "reset"
	OpStash              = "stash"
	OpListStash          = "listStash"
	OpPopStash           = "popStash"
	OpDropStash          = "dropStash"
	OpGetCommits         = "getCommits"
	OpGetStagedFiles     = "getStagedFiles"
	OpGetChangedFiles    = "getChangedFiles"
)

// Response types.
const (
	TypeUserAndEmail        = "userAndEmail"
	TypeUserNotConfigured   = "userNotConfigured"
	TypeRemote              = "remote"
	TypeRemoteNotConfigured = "remoteNotConfigured"
	TypeCommits             = "commits"
	TypeStagedFiles         = "stagedFiles"
	TypeChangedFiles        = "changedFiles"
	TypeLocalBranches       = "localBranches"
	TypeRemoteBranches      = "remoteBranches"
	TypeStashList           = "stashList"
	TypeError               = "error"
)

// Message is one request from the host. Only the fields the named
// operation reads need to be set.
type Message struct {
	Type          string   `json:"type"`
	User          string   `json:"user,omitempty"`
	Email         string   `json:"email,omitempty"`
	URL           string   `json:"url,omitempty"`
	All           bool     `json:"all,omitempty"`
	Files         []string `json:"files,omitempty"`
	Message       string   `json:"message,omitempty"`
	BranchName    string   `json:"branchName,omitempty"`
	CommitHash    string   `json:"commitHash,omitempty"`
	Hash          string   `json:"hash,omitempty"`
	MaxCount      int      `json:"maxCount,omitempty"`
	LastFetchTime string   `json:"lastFetchTime,omitempty"`
}

// Response is the answer to a Message. An empty Type means there is
// nothing to send back.
type Response struct {
	Type         string        `json:"type,omitempty"`
	User         string        `json:"user,omitempty"`
	Email        string        `json:"email,omitempty"`
	Remote       string        `json:"remote,omitempty"`
	Message      string        `json:"message,omitempty"`
	Commits      []LogEntry    `json:"commits,omitempty"`
	StagedFiles  []string      `json:"stagedFiles,omitempty"`
	ChangedFiles []string      `json:"changedFiles,omitempty"`
	Branches     []branch.Info `json:"branches,omitempty"`
	Stashes      []string      `json:"stashes,omitempty"`
}

// Empty reports whether the response carries nothing.
func (r Response) Empty() bool {
	return r.Type == ""
}

// ErrorResponse wraps e for the host.
func ErrorResponse(e error) Response {
	return Response{Type: TypeError, Message: e.Error()}
}

// DecodeMessage parses a JSON message.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if e := json.Unmarshal(data, &msg); e != nil {
		return Message{}, NewDecodeError(e)
	}
	return msg, nil
}

// Encode returns the JSON form of the response.
func (r Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}
