// Command threadlink runs the thread-to-tracker linkage service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bobg/mid"
	"github.com/bobg/subcmd/v2"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"threadlink"
	"threadlink/github"
	"threadlink/notion"
	"threadlink/pg"
	"threadlink/sqlite"
)

func main() {
	var c maincmd
	err := subcmd.Run(context.Background(), c, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

type maincmd struct{}

func (maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"serve", doServe, "run the threadlink server", subcmd.Params(
			"-config", subcmd.String, "config.yml", "path to config file",
		),
		"admin", doAdmin, "send an admin command to a threadlink server", subcmd.Params(
			"-url", subcmd.String, "", "base URL of threadlink server",
			"-key", subcmd.String, "", "admin key",
		),
	)
}

type config struct {
	AdminKey  string `yaml:"admin_key"`
	BotUserID string `yaml:"bot_user_id"`
	Certfile  string
	Database  string
	Keyfile   string
	Listen    string
	LogLevel  string `yaml:"log_level"`

	Github struct {
		Token     string
		APIURL    string `yaml:"api_url"`
		UploadURL string `yaml:"upload_url"`
		Owner     string
		Repo      string
	}

	Notion struct {
		Token            string
		DatabaseID       string `yaml:"database_id"`
		TitleProperty    string `yaml:"title_property"`
		StatusProperty   string `yaml:"status_property"`
		PriorityProperty string `yaml:"priority_property"`
		TagsProperty     string `yaml:"tags_property"`
		InitialStatus    string `yaml:"initial_status"`
		DoneStatus       string `yaml:"done_status"`
	}
}

var defaultConfig = config{
	Database: "sqlite3:threadlink.db",
	Listen:   ":3854",
	LogLevel: "info",
}

func doServe(ctx context.Context, configPath string, _ []string) error {
	// Secrets may live in a .env file next to the config instead of in it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}

	f, err := os.Open(configPath)
	if err != nil {
		return errors.Wrap(err, "opening config file")
	}
	defer f.Close()

	c := defaultConfig
	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		c.Github.Token = tok
	}
	if tok := os.Getenv("NOTION_TOKEN"); tok != "" {
		c.Notion.Token = tok
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLevel(c.LogLevel),
	}))
	slog.SetDefault(logger)

	issues, err := github.New(github.Config{
		Token:     c.Github.Token,
		APIURL:    c.Github.APIURL,
		UploadURL: c.Github.UploadURL,
		Owner:     c.Github.Owner,
		Repo:      c.Github.Repo,
	})
	if err != nil {
		return errors.Wrap(err, "creating issue-tracker client")
	}

	pages := notion.New(notion.Config{
		Token:            c.Notion.Token,
		DatabaseID:       c.Notion.DatabaseID,
		TitleProperty:    c.Notion.TitleProperty,
		StatusProperty:   c.Notion.StatusProperty,
		PriorityProperty: c.Notion.PriorityProperty,
		TagsProperty:     c.Notion.TagsProperty,
		InitialStatus:    c.Notion.InitialStatus,
		DoneStatus:       c.Notion.DoneStatus,
	})

	s := &threadlink.Service{
		Issues:    issues,
		Pages:     pages,
		BotUserID: c.BotUserID,
		AdminKey:  c.AdminKey,
		Logger:    logger,
	}

	dbparts := strings.SplitN(c.Database, ":", 2)
	if len(dbparts) < 2 {
		return fmt.Errorf("bad database config string %s", c.Database)
	}

	switch dbparts[0] {
	case "sqlite3":
		stores, err := sqlite.Open(ctx, dbparts[1])
		if err != nil {
			return errors.Wrap(err, "opening database")
		}
		defer stores.Close()
		s.Links = stores.Links
		s.Comments = stores.Comments

	case "postgresql":
		stores, err := pg.Open(ctx, dbparts[1])
		if err != nil {
			return errors.Wrap(err, "opening database")
		}
		defer stores.Close()
		s.Links = stores.Links
		s.Comments = stores.Comments

	default:
		return fmt.Errorf("unknown database type %s", dbparts[0])
	}

	r := mux.NewRouter()
	r.Handle("/events/message", mid.Err(s.OnChatEvent)).Methods("POST")
	r.Handle("/links/open", mid.Err(s.OnOpenLink)).Methods("POST")
	r.Handle("/links/close", mid.Err(s.OnCloseLink)).Methods("POST")
	r.Handle("/links/query", mid.Err(s.OnQueryLink)).Methods("POST")

	httpServer := &http.Server{
		Addr:    c.Listen,
		Handler: r,
	}
	ch := make(chan struct{})

	r.Handle("/admin", mid.JSON(s.OnAdmin(httpServer, ch)))

	logger.Info("listening", "addr", httpServer.Addr)

	if c.Certfile != "" && c.Keyfile != "" {
		err = httpServer.ListenAndServeTLS(c.Certfile, c.Keyfile)
	} else {
		err = httpServer.ListenAndServe()
	}

	<-ch

	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func doAdmin(ctx context.Context, url, key string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: threadlink admin -url URL -key KEY COMMAND")
	}
	cmd := threadlink.AdminCmd{
		Key:  key,
		Name: args[0],
	}
	enc, err := json.Marshal(cmd)
	if err != nil {
		return errors.Wrap(err, "marshaling command")
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url+"/admin", bytes.NewReader(enc))
	if err != nil {
		return errors.Wrap(err, "preparing request")
	}
	req.Header.Set("Content-Type", "application/json")
	var cl http.Client
	resp, err := cl.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending command to threadlink service")
	}
	defer resp.Body.Close()
	log.Printf("Response: %s", resp.Status)
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		io.Copy(os.Stdout, resp.Body)
	}
	return nil
}
