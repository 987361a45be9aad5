package cmd

import (
	"context"
	"time"

	"github.com/olimci/kotoba/pkg/config"
	"github.com/olimci/kotoba/pkg/version"
	"github.com/urfave/cli/v3"
)

var Version = version.String()

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, Usage: "config file path"}
}

func Execute(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:  "kotoba",
		Usage: "Locale-aware URLs, sitemaps and hreflang checks for static sites",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "log debug events"},
		},
		Commands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "print version",
				Action: runVersion,
			},
			{
				Name:  "build",
				Usage: "Resolve content, run checks and write sitemap.xml, robots.txt and alternates.json",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "output directory (overrides config)"},
					&cli.BoolFlag{Name: "no-checks", Value: false, Usage: "skip the hreflang checks"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 0, Usage: "parallel workers (0 = config or CPU count)"},
				},
				Action: runBuild,
			},
			{
				Name:  "check",
				Usage: "Check the hreflang tags of a rendered site",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: "", Usage: "directory of rendered HTML (defaults to the build output)"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 0, Usage: "parallel workers (0 = config or CPU count)"},
				},
				Action: runCheck,
			},
			{
				Name:  "serve",
				Usage: "Build once and serve sitemap.xml, robots.txt and the output directory",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "directory to serve (overrides config)"},
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6767, Usage: "HTTP port"},
				},
				Action: runServe,
			},
			{
				Name:  "dev",
				Usage: "Serve the site and rebuild when content or config change",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Value: "", Usage: "directory to serve (overrides config)"},
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6767, Usage: "HTTP port"},
					&cli.DurationFlag{Name: "debounce", Value: 250 * time.Millisecond, Usage: "debounce window for rebuilds"},
				},
				Action: runDev,
			},
		},
	}

	return app.Run(ctx, args)
}
