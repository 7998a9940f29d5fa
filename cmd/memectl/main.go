package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/urfave/cli/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// memectl is the operator tool for a running meme API: inspect the store,
// submit memes, vote, and export stored images back to files.

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type meme struct {
	ID      uint   `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Upvotes int    `json:"upvotes"`
	Image   string `json:"image"`
}

func main() {
	app := &cli.App{
		Name:    "memectl",
		Usage:   "Operator tool for the meme API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   "http://localhost:8080",
				Usage:   "Base URL of the meme API",
				EnvVars: []string{"MEMEHUB_API"},
			},
		},
		Commands: []*cli.Command{
			topCmd(),
			randomCmd(),
			getCmd(),
			createCmd(),
			voteCmd(),
			exportCmd(),
			listCmd(),
			resetCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func client(c *cli.Context) *resty.Client {
	return resty.New().SetBaseURL(c.String("api"))
}

// call performs a request and unwraps the response envelope; a body envelope
// with status "error" is returned as a Go error.
func call(c *cli.Context, method, path string, body interface{}) (*apiResponse, error) {
	req := client(c).R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode())
	}

	var envelope apiResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("%s", envelope.Error)
	}
	return &envelope, nil
}

func printMeme(m *meme) {
	fmt.Printf("id=%d upvotes=%d url=%q caption=%q image_bytes=%d\n",
		m.ID, m.Upvotes, m.URL, m.Caption, base64.StdEncoding.DecodedLen(len(m.Image)))
}

func topCmd() *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show the top 10 memes by upvotes",
		Action: func(c *cli.Context) error {
			envelope, err := call(c, "GET", "/api/meme/top/", nil)
			if err != nil {
				return err
			}
			var memes []meme
			if err := json.Unmarshal(envelope.Data, &memes); err != nil {
				return err
			}
			for i := range memes {
				printMeme(&memes[i])
			}
			return nil
		},
	}
}

func randomCmd() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Show a random meme",
		Action: func(c *cli.Context) error {
			envelope, err := call(c, "GET", "/api/meme/random/", nil)
			if err != nil {
				return err
			}
			var m meme
			if err := json.Unmarshal(envelope.Data, &m); err != nil {
				return err
			}
			printMeme(&m)
			return nil
		},
	}
}

func getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a meme by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one id argument")
			}
			envelope, err := call(c, "GET", "/api/meme/"+c.Args().First(), nil)
			if err != nil {
				return err
			}
			var m meme
			if err := json.Unmarshal(envelope.Data, &m); err != nil {
				return err
			}
			printMeme(&m)
			return nil
		},
	}
}

func createCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Submit a new meme from a URL or a local image file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Image URL to fetch"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local image file to upload inline"},
			&cli.StringFlag{Name: "caption", Usage: "Caption (omit to derive via OCR)"},
			&cli.StringFlag{Name: "language", Usage: "OCR language hint"},
		},
		Action: func(c *cli.Context) error {
			body := map[string]string{
				"url":      c.String("url"),
				"caption":  c.String("caption"),
				"language": c.String("language"),
			}
			if path := c.String("file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				body["image"] = base64.StdEncoding.EncodeToString(data)
			}
			if _, err := call(c, "POST", "/api/meme/", body); err != nil {
				return err
			}
			fmt.Println("created")
			return nil
		},
	}
}

func voteCmd() *cli.Command {
	return &cli.Command{
		Name:      "vote",
		Usage:     "Upvote or downvote a meme",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "upvote", Usage: "Vote type: upvote|downvote"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one id argument")
			}
			path := "/api/meme/" + c.Args().First() + "/vote/"
			if _, err := call(c, "POST", path, map[string]string{"type": c.String("type")}); err != nil {
				return err
			}
			fmt.Println("voted")
			return nil
		},
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Decode a stored meme image to a file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "Output file path"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one id argument")
			}
			envelope, err := call(c, "GET", "/api/meme/"+c.Args().First(), nil)
			if err != nil {
				return err
			}
			var m meme
			if err := json.Unmarshal(envelope.Data, &m); err != nil {
				return err
			}
			data, err := base64.StdEncoding.DecodeString(m.Image)
			if err != nil {
				return fmt.Errorf("stored image is not valid base64: %w", err)
			}
			if err := os.WriteFile(c.String("out"), data, 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(data), c.String("out"))
			return nil
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List every stored meme (admin)",
		Action: func(c *cli.Context) error {
			envelope, err := call(c, "GET", "/api/admin/memes/", nil)
			if err != nil {
				return err
			}
			var memes []meme
			if err := json.Unmarshal(envelope.Data, &memes); err != nil {
				return err
			}
			for i := range memes {
				printMeme(&memes[i])
			}
			fmt.Printf("%d memes\n", len(memes))
			return nil
		},
	}
}

func resetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete every stored meme (admin)",
		Action: func(c *cli.Context) error {
			if _, err := call(c, "POST", "/api/admin/reset/", nil); err != nil {
				return err
			}
			fmt.Println("store reset")
			return nil
		},
	}
}
