package main

import (
	"fmt"
	"os"

	"github.com/haileyok/cimd/server"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

func main() {
	app := &cli.App{
		Name:  "cimd",
		Usage: "A demonstration OAuth authorization server for client id metadata documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				EnvVars: []string{"CIMD_ADDR"},
			},
			&cli.StringFlag{
				Name:     "hostname",
				Required: true,
				EnvVars:  []string{"CIMD_HOSTNAME"},
			},
			&cli.StringFlag{
				Name:    "static-file-path",
				Value:   "static",
				EnvVars: []string{"CIMD_STATIC_FILE_PATH"},
			},
			&cli.StringFlag{
				Name:    "demo-username",
				Value:   "demo",
				EnvVars: []string{"CIMD_DEMO_USERNAME"},
			},
			&cli.StringFlag{
				Name:     "demo-password",
				Required: true,
				EnvVars:  []string{"CIMD_DEMO_PASSWORD"},
			},
			&cli.StringFlag{
				Name:     "cookie-secret",
				Required: true,
				EnvVars:  []string{"CIMD_COOKIE_SECRET"},
			},
		},
		Commands: []*cli.Command{
			run,
		},
		ErrWriter: os.Stdout,
		Version:   Version,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

var run = &cli.Command{
	Name:  "run",
	Usage: "Start the cimd authorization server",
	Flags: []cli.Flag{},
	Action: func(cmd *cli.Context) error {
		s, err := server.New(&server.Args{
			Addr:           cmd.String("addr"),
			Hostname:       cmd.String("hostname"),
			Version:        Version,
			StaticFilePath: cmd.String("static-file-path"),
			DemoUsername:   cmd.String("demo-username"),
			DemoPassword:   cmd.String("demo-password"),
			CookieSecret:   cmd.String("cookie-secret"),
		})
		if err != nil {
			fmt.Printf("error creating cimd server: %v", err)
			return err
		}

		if err := s.Serve(cmd.Context); err != nil {
			fmt.Printf("error starting cimd server: %v", err)
			return err
		}

		return nil
	},
}
