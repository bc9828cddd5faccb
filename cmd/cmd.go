// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func groupFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "group",
		Aliases: []string{"g"},
		Usage:   usage,
	}
}

// setupCommand handles setup operations for the database, config file and catalog headers.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the chapter cache and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the default config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the config file",
						Value: "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "catalog",
				Usage: "Store browser headers sent with catalog requests",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for headers.json (default: ~/.mangax/headers.json)",
					},
				},
				Action: r.SetupCatalog,
			},
		},
	}
}

// browseCommand searches and filters the catalog.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"search"},
		Usage:   "Browse or search titles",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "genre", Usage: "Include genre (slug), repeatable"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Exclude genre (slug), repeatable"},
			&cli.StringFlag{Name: "type", Usage: "Comic type"},
			&cli.StringSliceFlag{Name: "demographic", Usage: "Demographic id (1-4), repeatable"},
			&cli.StringSliceFlag{Name: "country", Usage: "Country of origin (jp, kr, cn, ...), repeatable"},
			&cli.IntFlag{Name: "status", Usage: "Publication status (1 ongoing, 2 completed, 3 cancelled, 4 hiatus)"},
			&cli.StringFlag{Name: "content-rating", Usage: "Content rating (safe, suggestive, erotica)"},
			&cli.IntFlag{Name: "from", Usage: "Earliest release year"},
			&cli.IntFlag{Name: "to", Usage: "Latest release year"},
			&cli.IntFlag{Name: "minimum", Usage: "Minimum number of chapters"},
			&cli.StringFlag{Name: "sort", Usage: "Sort order (follow, view, rating, uploaded, created_at)"},
			&cli.BoolFlag{Name: "completed", Usage: "Only completely translated titles"},
			&cli.IntFlag{Name: "page", Usage: "Result page", Value: 1},
			&cli.IntFlag{Name: "limit", Usage: "Results per page", Value: 20},
			jsonFlag(),
		},
		Action: r.Browse,
	}
}

// latestCommand lists recently updated chapters.
func latestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "List recently updated chapters",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Usage: "Result page", Value: 1},
			&cli.IntFlag{Name: "limit", Usage: "Results per page", Value: 20},
			jsonFlag(),
		},
		Action: r.Latest,
	}
}

// comicCommand handles title operations.
func comicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "comic",
		Aliases: []string{"title"},
		Usage:   "Title information and chapter lists",
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show title metadata",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ComicInfo,
			},
			{
				Name:      "chapters",
				Usage:     "List chapters newest first",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
				Flags: []cli.Flag{
					groupFlag("Only chapters by this translation group"),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, csv, markdown, json)",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file (a directory for markdown) instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the cover image with a markdown export",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Bypass the chapter cache",
					},
				},
				Action: r.ComicChapters,
			},
			{
				Name:      "open",
				Usage:     "Open the title page in a browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
				Action:    r.ComicOpen,
			},
		},
	}
}

// chapterCommand handles single chapter operations.
func chapterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "chapter",
		Aliases: []string{"ch"},
		Usage:   "Chapter details, pages and navigation",
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show chapter details",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ChapterInfo,
			},
			{
				Name:      "images",
				Aliases:   []string{"pages"},
				Usage:     "List page image URLs",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ChapterImages,
			},
			{
				Name:      "nav",
				Usage:     "Resolve the previous and next chapter",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Title id (looked up from the chapter when omitted)",
					},
					groupFlag("Follow this translation group (overrides config)"),
					&cli.BoolFlag{
						Name:  "any-group",
						Usage: "Ignore groups and use adjacent chapters",
					},
					jsonFlag(),
				},
				Action: r.ChapterNav,
			},
		},
	}
}

// readCommand launches the interactive reader.
func readCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Aliases:   []string{"tui", "ui"},
		Usage:     "Read a title interactively",
		Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "chapter",
				Usage: "Chapter id to start at (default: first chapter)",
			},
			groupFlag("Follow this translation group"),
		},
		Action: r.Read,
	}
}

// serveCommand runs the HTTP proxy and navigation API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog proxy and navigation API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from [server] config)",
			},
		},
		Action: r.Serve,
	}
}

// apiCommand handles direct catalog API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the catalog API, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// cacheCommand handles the local chapter cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local chapter cache",
		Commands: []*cli.Command{
			{
				Name:      "warm",
				Usage:     "Fetch and cache chapter lists for titles",
				ArgsUsage: "<slug>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Titles started per second",
						Value: 2,
					},
				},
				Action: r.CacheWarm,
			},
			{
				Name:   "list",
				Usage:  "List cached titles",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.CacheList,
			},
			{
				Name:      "clear",
				Usage:     "Remove cached titles and chapters",
				ArgsUsage: "[title-id]",
				Action:    r.CacheClear,
			},
		},
	}
}
