package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/fs"
	"github.com/fwojciec/prospect/outreach"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// NewCrawler returns a crawler with its own HTTP session.
	NewCrawler func() prospect.SiteCrawler

	Agent    *outreach.Agent
	Outreach prospect.OutreachService
	Corpora  prospect.CorpusService
	Exporter *fs.CorpusExporter
	Now      func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose       bool          `short:"v" help:"Log every fetch, render and model call"`
	Renderer      string        `default:"rod" enum:"rod,chromedp,none" help:"Headless browser used for JavaScript-heavy pages (rod, chromedp, none)"`
	MaxPages      int           `default:"8" help:"Maximum pages per site, homepage included"`
	Delay         time.Duration `default:"1s" help:"Delay between page fetches"`
	RespectRobots bool          `name:"respect-robots" help:"Skip pages disallowed by robots.txt"`
	Model         string        `default:"gemini-2.5-flash" help:"Gemini model"`
	GeminiAPIKey  string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	SMTPUsername  string        `name:"smtp-username" env:"SMTP_USERNAME" help:"SMTP login, also the From address"`
	SMTPPassword  string        `name:"smtp-password" env:"SMTP_PASSWORD" help:"SMTP password (Gmail app password)"`
	SMTPHost      string        `name:"smtp-host" env:"SMTP_HOST" default:"smtp.gmail.com" help:"SMTP relay host"`
	SMTPPort      string        `name:"smtp-port" env:"SMTP_PORT" default:"587" help:"SMTP relay port"`
	SenderName    string        `name:"sender-name" env:"SENDER_NAME" help:"Name used to sign and send emails"`

	Scrape    ScrapeCmd    `cmd:"" help:"Crawl a website and print its corpus"`
	Run       RunCmd       `cmd:"" help:"Crawl, analyze and draft an email for a website"`
	Batch     BatchCmd     `cmd:"" help:"Draft emails for many websites without sending"`
	History   HistoryCmd   `cmd:"" help:"List stored crawls"`
	Log       LogCmd       `cmd:"" help:"List outreach records"`
	Mark      MarkCmd      `cmd:"" help:"Update an outreach record"`
	Followups FollowupsCmd `cmd:"" help:"Show scheduled follow-ups"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL      string `arg:"" help:"Website URL"`
	NoRender bool   `name:"no-render" help:"Never fall back to a headless browser"`
	JSON     bool   `help:"Print the corpus as JSON"`
	Save     bool   `help:"Store the corpus for later analysis"`
	Out      string `short:"o" type:"path" help:"Write pages as markdown files to this directory"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL      string `arg:"" help:"Website URL"`
	To       string `help:"Recipient email address"`
	Send     bool   `help:"Send without asking for confirmation"`
	Tone     string `default:"professional" enum:"professional,conversational,bold,consultative" help:"Email tone"`
	Stored   bool   `help:"Analyze the most recent stored crawl instead of crawling"`
	NoRender bool   `name:"no-render" help:"Never fall back to a headless browser"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Inputs      []string `arg:"" name:"url-or-file" help:"Website URLs, or files with one URL per line"`
	Tone        string   `default:"professional" enum:"professional,conversational,bold,consultative" help:"Email tone"`
	Concurrency int      `short:"c" default:"1" help:"Websites processed in parallel"`
	NoRender    bool     `name:"no-render" help:"Never fall back to a headless browser"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of crawls to show"`
}

// LogCmd is the "log" subcommand.
type LogCmd struct {
	JSON bool `help:"Print records as JSON"`
}

// MarkCmd is the "mark" subcommand.
type MarkCmd struct {
	Index         int    `arg:"" help:"Record index as shown by 'prospect log'"`
	Opened        bool   `help:"Mark the email as opened now"`
	Replied       bool   `help:"Mark the email as replied now"`
	FollowUp      string `name:"follow-up" placeholder:"YYYY-MM-DD" help:"Schedule a follow-up date"`
	ClearFollowUp bool   `name:"clear-follow-up" help:"Remove the scheduled follow-up"`
	Notes         string `help:"Append a note"`
}

// FollowupsCmd is the "followups" subcommand.
type FollowupsCmd struct{}
