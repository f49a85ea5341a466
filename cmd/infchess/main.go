package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/benbeisheim/infinichess-backend/internal/codec"
	"github.com/benbeisheim/infinichess-backend/internal/middleware"
	"github.com/benbeisheim/infinichess-backend/internal/model"
	"github.com/benbeisheim/infinichess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const defaultServer = "http://localhost:8080"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "rank", Value: "0", Usage: "first rank of the window"},
		&cli.StringFlag{Name: "file", Value: "0", Usage: "first file of the window"},
		&cli.StringFlag{Name: "size", Value: "8", Usage: "window width and height"},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "infchess",
		Usage: "talk to an infinite chess server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   defaultServer,
				Usage:   "server base URL",
				Sources: cli.EnvVars("INFCHESS_SERVER"),
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "client id sent with every request",
				Sources: cli.EnvVars("INFCHESS_CLIENT_ID"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 40 * time.Second,
				Usage: "request timeout; keep it above the server long poll timeout",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "board",
				Usage: "print a window of the board",
				Flags: windowFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					win, err := window(cmd)
					if err != nil {
						return err
					}
					body, err := newClient(cmd).get("board")
					if err != nil {
						return err
					}
					return printBoard(body, win)
				},
			},
			{
				Name:      "legal",
				Usage:     "list the legal destinations of a piece inside a window",
				ArgsUsage: "RANK FILE",
				Flags:     windowFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := coordinates(cmd, 2)
					if err != nil {
						return err
					}
					win, err := window(cmd)
					if err != nil {
						return err
					}
					body, err := newClient(cmd).get("legal", args[0], args[1], win.Rank.String(), win.File.String(), win.Size.String())
					if err != nil {
						return err
					}
					var moves []model.Position
					if err := json.Unmarshal(body, &moves); err != nil {
						return fmt.Errorf("decode moves: %w", err)
					}
					for _, m := range moves {
						fmt.Println(m)
					}
					return nil
				},
			},
			{
				Name:      "move",
				Usage:     "move the piece on one square to another",
				ArgsUsage: "RANK FILE TORANK TOFILE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := coordinates(cmd, 4)
					if err != nil {
						return err
					}
					body, err := newClient(cmd).get("move", args...)
					if err != nil {
						return err
					}
					fmt.Println(string(body))
					return nil
				},
			},
			{
				Name:      "promote",
				Usage:     "change the type of the piece on a square",
				ArgsUsage: "RANK FILE PIECE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 3 {
						return fmt.Errorf("promote takes RANK FILE PIECE")
					}
					pos, err := model.ParsePosition(cmd.Args().Get(0), cmd.Args().Get(1))
					if err != nil {
						return err
					}
					body, err := newClient(cmd).get("promote", pos.Rank.String(), pos.File.String(), cmd.Args().Get(2))
					if err != nil {
						return err
					}
					fmt.Println(string(body))
					return nil
				},
			},
			{
				Name:      "wait",
				Usage:     "block until the turn counter reaches VERSION, then print the board",
				ArgsUsage: "VERSION",
				Flags:     windowFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args, err := coordinates(cmd, 1)
					if err != nil {
						return err
					}
					win, err := window(cmd)
					if err != nil {
						return err
					}
					body, err := newClient(cmd).get("board", args[0])
					if err != nil {
						return err
					}
					return printBoard(body, win)
				},
			},
			{
				Name:  "watch",
				Usage: "stream the board over the websocket",
				Flags: windowFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					win, err := window(cmd)
					if err != nil {
						return err
					}
					return watch(ctx, cmd, win)
				},
			},
		},
	}
}

func coordinates(cmd *cli.Command, n int) ([]string, error) {
	if cmd.Args().Len() != n {
		return nil, fmt.Errorf("%s takes %s", cmd.Name, cmd.ArgsUsage)
	}
	out := make([]string, n)
	for i := range out {
		c, err := model.ParseCoordinate(cmd.Args().Get(i))
		if err != nil {
			return nil, err
		}
		out[i] = c.String()
	}
	return out, nil
}

func window(cmd *cli.Command) (model.Window, error) {
	corner, err := model.ParsePosition(cmd.String("rank"), cmd.String("file"))
	if err != nil {
		return model.Window{}, err
	}
	size, err := model.ParseCoordinate(cmd.String("size"))
	if err != nil {
		return model.Window{}, err
	}
	return model.Window{Rank: corner.Rank, File: corner.File, Size: size}, nil
}

func printBoard(body []byte, win model.Window) error {
	b, err := codec.Decode(body)
	if err != nil {
		return err
	}
	fmt.Printf("turn %s\n", b.Turn())
	return render(os.Stdout, b, win)
}

type client struct {
	server   string
	clientID string
	timeout  time.Duration
}

func newClient(cmd *cli.Command) client {
	return client{
		server:   strings.TrimRight(cmd.String("server"), "/"),
		clientID: cmd.String("client-id"),
		timeout:  cmd.Duration("timeout"),
	}
}

func (c client) url(route string, params ...string) string {
	parts := append([]string{c.server, route}, params...)
	for i := 2; i < len(parts); i++ {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

func (c client) get(route string, params ...string) ([]byte, error) {
	agent := fiber.Get(c.url(route, params...)).Timeout(c.timeout)
	if c.clientID != "" {
		agent.Set(middleware.ClientIDHeader, c.clientID)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("GET /%s: %w", route, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("GET /%s: %d %s", route, code, e.Error)
		}
		return nil, fmt.Errorf("GET /%s: status %d", route, code)
	}
	return body, nil
}

func (c client) websocketURL() (string, error) {
	u, err := url.Parse(c.server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	if c.clientID != "" {
		q := u.Query()
		q.Set("clientId", c.clientID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func watch(ctx context.Context, cmd *cli.Command, win model.Window) error {
	wsURL, err := newClient(cmd).websocketURL()
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			fmt.Fprintf(os.Stderr, "bad message: %v\n", err)
			continue
		}
		switch msg.Type {
		case ws.MessageTypeBoard:
			if err := printBoard(msg.Payload, win); err != nil {
				return err
			}
			fmt.Println()
		default:
			fmt.Printf("%s %s\n", msg.Type, msg.Payload)
		}
	}
}
