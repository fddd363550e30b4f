package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/rpc"
	"github.com/dmitrijs2005/custodian/internal/server/auth"
)

const jwtSecretEnv = "CUSTODIAN_JWT_SECRET"

func exactlyArgs(args []string, n int) error {
	if len(args) != n {
		return ErrUsage
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) ping(ctx context.Context, args []string) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) storeCredentials(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}

	username, err := GetSimpleText(a.in, "Portal username", a.out)
	if err != nil {
		return err
	}
	password, err := GetSecret(a.in, "Portal password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	at, err := a.client.StoreCredentials(ctx, args[0], username, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Credentials stored for case %s at %s\n", args[0], at.Format(time.RFC3339))
	return nil
}

func (a *App) retrieveCredentials(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}

	creds, err := a.client.RetrieveCredentials(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Username: %s\nPassword: %s\n", creds.Username, creds.Password)
	return nil
}

func (a *App) accessLog(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}

	entries, err := a.client.ListAccessLog(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tWHO\tNOTE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.OccurredAt.Format(time.RFC3339), e.Who, e.Note)
	}
	return tw.Flush()
}

func (a *App) issueCode(ctx context.Context, args []string) error {
	fs := newFlagSet("issue-code")
	name := fs.String("name", "", "label shown to the owner")
	cats := fs.String("categories", "", "comma-separated document categories")
	ttl := fs.Duration("ttl", 0, "lifetime; zero uses the server default")
	if err := fs.Parse(args); err != nil || *cats == "" || fs.NArg() != 0 {
		return ErrUsage
	}

	var categories []string
	for _, c := range strings.Split(*cats, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	issued, err := a.client.IssueShareCode(ctx, *name, categories, *ttl)
	if err != nil {
		return err
	}
	a.printIssued(issued)
	return nil
}

func (a *App) revokeCode(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}
	if err := a.client.RevokeShareCode(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Share code %s revoked\n", args[0])
	return nil
}

func (a *App) rotateCode(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}
	issued, err := a.client.RotateShareCode(ctx, args[0])
	if err != nil {
		return err
	}
	a.printIssued(issued)
	return nil
}

func (a *App) listCodes(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 0); err != nil {
		return err
	}

	codes, err := a.client.ListShareCodes(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE\tCATEGORIES\tEXPIRES\tACCESSES")
	for _, c := range codes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Name, c.State, strings.Join(c.Categories, ","), c.ExpiresAt.Format(time.RFC3339), c.AccessCount)
	}
	return tw.Flush()
}

func (a *App) composeCode(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 1); err != nil {
		return err
	}
	full, err := a.client.ComposeCode(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, full)
	return nil
}

func (a *App) checkActivity(ctx context.Context, args []string) error {
	if err := exactlyArgs(args, 2); err != nil {
		return err
	}
	v, err := a.client.CheckSuspiciousActivity(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if !v.Suspicious {
		fmt.Fprintln(a.out, "No suspicious activity")
		return nil
	}
	fmt.Fprintln(a.out, "Suspicious:")
	for _, r := range v.Reasons {
		fmt.Fprintln(a.out, "  - "+r)
	}
	return nil
}

// mintToken signs a token locally with the JWT provider's shared secret.
// Meant for development and operations against the jwt identity provider.
func (a *App) mintToken(_ context.Context, args []string) error {
	fs := newFlagSet("mint-token")
	user := fs.String("user", "", "user id to put in the token")
	ttl := fs.Duration("ttl", time.Hour, "token validity")
	if err := fs.Parse(args); err != nil || *user == "" || *ttl <= 0 {
		return ErrUsage
	}

	secret := []byte(a.getenv(jwtSecretEnv))
	if len(secret) == 0 {
		var err error
		if secret, err = GetSecret(a.in, "JWT secret", a.out); err != nil {
			return err
		}
	}
	defer common.WipeByteArray(secret)
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty JWT secret", ErrUsage)
	}

	token, err := auth.GenerateToken(*user, secret, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) printIssued(ic *rpc.IssuedShareCodeResponse) {
	fmt.Fprintf(a.out, "Share code: %s\nID:         %s\nExpires:    %s\n",
		ic.FullCode, ic.Code.ID, ic.Code.ExpiresAt.Format(time.RFC3339))
}
