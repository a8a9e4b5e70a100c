// Command yatubectl administers a yatube database: it applies migrations,
// manages groups (which have no write API over HTTP) and creates users.
//
// It reads the same configuration as the server:
//
//	yatubectl --config config.yaml groups create --title Cats --slug cats
//	DB_PATH=/var/lib/yatube/yatube.db yatubectl groups list
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/config"
	sqliteRepo "github.com/sakif/yatube/internal/repository/sqlite"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "yatubectl",
		Usage:     "administer a yatube database",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				EnvVars: []string{"YATUBE_CONFIG"},
				Usage:   "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "database path, overrides the configured one",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations and print the version",
				Action: migrateAction,
			},
			{
				Name:  "groups",
				Usage: "manage groups",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a group",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "slug", Required: true},
							&cli.StringFlag{Name: "description"},
						},
						Action: createGroupAction,
					},
					{
						Name:      "delete",
						Usage:     "delete a group; its posts stay, ungrouped",
						ArgsUsage: "<id>",
						Action:    deleteGroupAction,
					},
					{
						Name:   "list",
						Usage:  "list groups",
						Action: listGroupsAction,
					},
				},
			},
			{
				Name:  "users",
				Usage: "manage users",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a password user",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Required: true},
							&cli.StringFlag{Name: "email"},
							&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"YATUBE_PASSWORD"}},
						},
						Action: createUserAction,
					},
				},
			},
		},
	}
}

// env is what every command works with: the loaded config and an open,
// migrated database.
type env struct {
	cfg    *config.Config
	db     *sqliteRepo.DB
	logger *slog.Logger
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if p := c.String("db"); p != "" {
		cfg.Database.Path = p
	}

	logger, err := cfg.Logging.NewLogger(c.App.ErrWriter)
	if err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: logger}, nil
}

func (e *env) groups() *service.GroupService {
	return service.NewGroupService(e.db.Groups(), e.logger)
}

func migrateAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	version, err := e.db.SchemaVersion(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is at schema version %d\n", e.cfg.Database.Path, version)
	return nil
}

func createGroupAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	group, err := e.groups().Create(c.Context, &transform.GroupPayload{
		Title:       c.String("title"),
		Slug:        c.String("slug"),
		Description: c.String("description"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created group %d (%s)\n", group.ID, group.Slug)
	return nil
}

func deleteGroupAction(c *cli.Context) error {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return cli.Exit("usage: yatubectl groups delete <id>", 2)
	}

	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	if err := e.groups().Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted group %d\n", id)
	return nil
}

func listGroupsAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	groups, err := e.groups().List(c.Context, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	}
	return tw.Flush()
}

func createUserAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.db.Close()

	tokens, err := auth.NewTokenService(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	users := service.NewAuthService(e.db.Users(), tokens, auth.NewPasswordService(), e.logger)

	user, err := users.Register(c.Context, &transform.RegisterPayload{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created user %d (%s)\n", user.ID, user.Username)
	return nil
}
