package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dmitrijs2005/custodian/internal/rpc"
)

var ErrUsage = errors.New("usage error")

// Client is the server API the commands need.
type Client interface {
	Ping(ctx context.Context) error
	StoreCredentials(ctx context.Context, caseID, username, password string) (time.Time, error)
	RetrieveCredentials(ctx context.Context, caseID string) (*rpc.RetrieveCredentialsResponse, error)
	ListAccessLog(ctx context.Context, caseID string) ([]rpc.AccessLogEntry, error)
	IssueShareCode(ctx context.Context, name string, categories []string, ttl time.Duration) (*rpc.IssuedShareCodeResponse, error)
	RevokeShareCode(ctx context.Context, shareCodeID string) error
	RotateShareCode(ctx context.Context, shareCodeID string) (*rpc.IssuedShareCodeResponse, error)
	ListShareCodes(ctx context.Context) ([]rpc.ShareCode, error)
	ComposeCode(ctx context.Context, rawCode string) (string, error)
	CheckSuspiciousActivity(ctx context.Context, shareCodeID, clientAddress string) (*rpc.CheckSuspiciousActivityResponse, error)
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"ping":                 {"ping", (*App).ping},
	"store-credentials":    {"store-credentials <case-id>", (*App).storeCredentials},
	"retrieve-credentials": {"retrieve-credentials <case-id>", (*App).retrieveCredentials},
	"access-log":           {"access-log <case-id>", (*App).accessLog},
	"issue-code":           {"issue-code -categories income,banking [-name N] [-ttl 72h]", (*App).issueCode},
	"revoke-code":          {"revoke-code <share-code-id>", (*App).revokeCode},
	"rotate-code":          {"rotate-code <share-code-id>", (*App).rotateCode},
	"list-codes":           {"list-codes", (*App).listCodes},
	"compose-code":         {"compose-code <raw-code>", (*App).composeCode},
	"check-activity":       {"check-activity <share-code-id> <client-address>", (*App).checkActivity},
	"mint-token":           {"mint-token -user <user-id> [-ttl 1h]", (*App).mintToken},
}

type App struct {
	client Client
	in     *bufio.Reader
	out    io.Writer
	getenv func(string) string
}

func NewApp(c Client, in io.Reader, out io.Writer) *App {
	return &App{client: c, in: bufio.NewReader(in), out: out, getenv: os.Getenv}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.printUsage()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.printUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	err := cmd.run(a, ctx, args[1:])
	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(a.out, "Usage:", cmd.usage)
	}
	return err
}

func (a *App) printUsage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Available commands:")
	for _, n := range names {
		fmt.Fprintln(a.out, "  "+commands[n].usage)
	}
}
