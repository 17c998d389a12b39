package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"swift-transfer/internal/api"
	"swift-transfer/internal/auth"
	"swift-transfer/internal/clipboard"
	"swift-transfer/internal/config"
	"swift-transfer/internal/logger"
	"swift-transfer/internal/store"
	"swift-transfer/internal/transfer"
	"swift-transfer/pkg/format"
)

func main() {
	app := &cli.App{
		Name:  "swift",
		Usage: "share files through a swift-transfer backend",
		Commands: []*cli.Command{
			loginCommand(),
			sendCommand(),
			listCommand(),
			showCommand(),
			downloadCommand(),
			emailCommand(),
			watchCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup initializes config, logging, the cache db and the API client.
func setup() (*api.Client, config.AppConfig, error) {
	cfg := config.Init()
	if err := logger.Init(cfg.LogPath); err != nil {
		return nil, cfg, err
	}
	if err := store.Init(cfg.CachePath); err != nil {
		logger.Errorf("local cache unavailable: %v", err)
	}
	auth.LoadToken()
	client, err := api.New(cfg.BaseURL, auth.GetCurrentToken)
	return client, cfg, err
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and persist the bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)"},
		},
		Action: func(c *cli.Context) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			password := c.String("password")
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				b, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = string(b)
			}
			if _, err := auth.Login(context.Background(), client, c.String("email"), password); err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Upload files and print the share link",
		ArgsUsage: "FILE [FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Mail the share link to this address"},
			&cli.StringFlag{Name: "message", Usage: "Message body for the email"},
			&cli.BoolFlag{Name: "copy", Usage: "Copy the share link to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("no files given")
			}
			client, _, err := setup()
			if err != nil {
				return err
			}
			var files []transfer.Selected
			for _, path := range c.Args().Slice() {
				sel, err := transfer.SelectFile(path)
				if err != nil {
					return err
				}
				files = append(files, sel)
			}

			bar := pb.StartNew(len(files))
			up := &transfer.Uploader{API: client}
			shareURL, err := up.Send(context.Background(), files, func(e transfer.Event) {
				if e.Stage == transfer.StageUploading {
					bar.SetCurrent(int64(e.Done))
				}
			})
			bar.Finish()
			if err != nil {
				return err
			}

			fmt.Println(shareURL)
			if c.Bool("copy") {
				if err := clipboard.Copy(shareURL); err != nil {
					logger.Errorf("copy share link: %v", err)
				}
			}
			if to := c.String("email"); to != "" {
				if err := transfer.EmailShareLink(context.Background(), client, shareURL, to, c.String("message")); err != nil {
					return fmt.Errorf("send email: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Share link mailed to %s\n", to)
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List transfers owned by the signed-in account",
		Action: func(c *cli.Context) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			transfers, err := client.MyTransfers(context.Background())
			if err != nil {
				// deployments without accounts: fall back to local history
				history, herr := store.History(50)
				if herr != nil || len(history) == 0 {
					return err
				}
				fmt.Fprintln(os.Stderr, "Backend list unavailable, showing local history.")
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"ID", "Files", "Size", "Share URL"})
				for _, h := range history {
					table.Append([]string{h.TransferID, strconv.Itoa(h.FileCount), format.Size(h.TotalBytes), h.ShareURL})
				}
				table.Render()
				return nil
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Status", "Files", "Size", "Expiry", "Share URL"})
			for _, t := range transfers {
				table.Append([]string{
					t.ID, t.Status, strconv.Itoa(len(t.Files)),
					format.Size(t.TotalSize()), format.Expiry(t.ExpiresAt), t.ShareURL,
				})
			}
			table.Render()
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one transfer",
		ArgsUsage: "TRANSFER_ID",
		Action: func(c *cli.Context) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			t, err := client.GetTransfer(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Printf("Transfer %s (%s), %s, %s\n", t.ID, t.Status, format.Size(t.TotalSize()), format.Expiry(t.ExpiresAt))
			fmt.Printf("Share URL: %s\n\n", t.ShareURL)
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Name", "Type", "Size"})
			for i, f := range t.Files {
				table.Append([]string{strconv.Itoa(i), f.Name, f.ContentType, format.Size(f.Size)})
			}
			table.Render()
			return nil
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download one file or the whole transfer as a zip",
		ArgsUsage: "TRANSFER_ID",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "index", Usage: "File position to download", Value: -1},
			&cli.BoolFlag{Name: "zip", Usage: "Download the bundled archive"},
			&cli.StringFlag{Name: "dir", Usage: "Destination directory (default from config)"},
		},
		Action: func(c *cli.Context) error {
			client, cfg, err := setup()
			if err != nil {
				return err
			}
			t, err := client.GetTransfer(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			dir := c.String("dir")
			if dir == "" {
				dir = cfg.DownloadDir
			}
			d := &transfer.Downloader{API: client, Dir: dir}

			var path string
			switch {
			case c.Bool("zip"):
				path, err = d.Zip(context.Background(), t)
			case c.Int("index") >= 0:
				path, err = d.File(context.Background(), t, c.Int("index"))
			default:
				return fmt.Errorf("pass --index or --zip")
			}
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func emailCommand() *cli.Command {
	return &cli.Command{
		Name:      "email",
		Usage:     "Mail an existing share link",
		ArgsUsage: "SHARE_URL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Recipient address", Required: true},
			&cli.StringFlag{Name: "message", Usage: "Optional message body"},
		},
		Action: func(c *cli.Context) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			if err := transfer.EmailShareLink(context.Background(), client, c.Args().First(), c.String("to"), c.String("message")); err != nil {
				return err
			}
			fmt.Println("Sent.")
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Send every new file appearing in a directory",
		ArgsUsage: "DIR",
		Action: func(c *cli.Context) error {
			client, cfg, err := setup()
			if err != nil {
				return err
			}
			dir := c.Args().First()
			if dir == "" {
				dir = cfg.WatchDir
			}
			if dir == "" {
				return fmt.Errorf("no directory given")
			}
			w := &transfer.Watcher{
				Uploader: &transfer.Uploader{API: client},
				Dir:      dir,
				OnSent: func(name, shareURL string) {
					fmt.Printf("%s -> %s\n", name, shareURL)
				},
			}
			return w.Run(context.Background())
		},
	}
}
