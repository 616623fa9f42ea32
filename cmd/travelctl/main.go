// travelctl is a command-line client for the Vagabond API. It keeps the
// session in a token file so commands can be run one at a time, the way the
// web client keeps its session across page reloads.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/omkarr10/Vagabond/internal/client"
	"github.com/omkarr10/Vagabond/internal/config"
	"github.com/omkarr10/Vagabond/internal/dto"
)

const usage = `Usage: travelctl <command> [flags]

Commands:
  register   -username -email -password       create an account and log in
  login      -username -password              log in
  me                                          show the current user
  generate   -destination -duration -budget -group -start [-interests]
                                              generate an itinerary
  list                                        list saved itineraries
  show       -id                              show one itinerary
  delete     -id                              delete an itinerary
  logout                                      discard the local session
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	session, err := client.New(client.Config{
		BaseURL:   cfg.Client.APIBaseURL,
		TokenFile: cfg.Client.TokenFile,
		Timeout:   cfg.Client.Timeout,
	})
	if err != nil {
		fatal("create session: %v", err)
	}
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "register":
		runRegister(ctx, session, args)
	case "login":
		runLogin(ctx, session, args)
	case "me":
		runMe(ctx, session)
	case "generate":
		runGenerate(ctx, session, args)
	case "list":
		runList(ctx, session)
	case "show":
		runShow(ctx, session, args)
	case "delete":
		runDelete(ctx, session, args)
	case "logout":
		runLogout(session)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runRegister(ctx context.Context, session *client.Session, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		fatal("register requires -username, -email and -password")
	}

	profile, err := session.Register(ctx, *username, *email, *password)
	if err != nil {
		fatal("register: %v", err)
	}
	fmt.Printf("registered and logged in as %s (%s)\n", profile.Username, profile.Email)
}

func runLogin(ctx context.Context, session *client.Session, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		fatal("login requires -username and -password")
	}

	profile, err := session.Login(ctx, *username, *password)
	if err != nil {
		fatal("login: %v", err)
	}
	fmt.Printf("logged in as %s\n", profile.Username)
}

func runMe(ctx context.Context, session *client.Session) {
	profile, err := session.Restore(ctx)
	if err != nil {
		fatal("restore session: %v", err)
	}
	if profile == nil {
		fatal("not logged in")
	}
	printJSON(profile)
}

func runGenerate(ctx context.Context, session *client.Session, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	destination := fs.String("destination", "", "destination city or country")
	duration := fs.Int("duration", 0, "trip length in days")
	budget := fs.String("budget", "moderate", "budget, moderate or luxury")
	group := fs.String("group", "solo", "solo, couple, family or group")
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	interests := fs.String("interests", "", "comma-separated interests")
	fs.Parse(args)

	if *destination == "" || *duration == 0 || *start == "" {
		fatal("generate requires -destination, -duration and -start")
	}

	req := &dto.GenerateItineraryRequest{
		Destination: *destination,
		Duration:    *duration,
		Budget:      *budget,
		GroupSize:   *group,
		StartDate:   *start,
	}
	if *interests != "" {
		for _, interest := range strings.Split(*interests, ",") {
			if trimmed := strings.TrimSpace(interest); trimmed != "" {
				req.Interests = append(req.Interests, trimmed)
			}
		}
	}

	it, err := session.Generate(ctx, req)
	if err != nil {
		fatal("generate: %v", err)
	}
	printJSON(it)
}

func runList(ctx context.Context, session *client.Session) {
	its, err := session.Itineraries(ctx)
	if err != nil {
		fatal("list: %v", err)
	}
	if len(its) == 0 {
		fmt.Println("no itineraries")
		return
	}
	for _, it := range its {
		fmt.Printf("%s  %-20s %2dd  %s\n", it.ID, it.Destination, it.Duration, it.StartDate)
	}
}

func runShow(ctx context.Context, session *client.Session, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "itinerary id")
	fs.Parse(args)

	if *id == "" {
		fatal("show requires -id")
	}

	it, err := session.Itinerary(ctx, *id)
	if err != nil {
		fatal("show: %v", err)
	}
	printJSON(it)
}

func runDelete(ctx context.Context, session *client.Session, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "itinerary id")
	fs.Parse(args)

	if *id == "" {
		fatal("delete requires -id")
	}

	if err := session.DeleteItinerary(ctx, *id); err != nil {
		fatal("delete: %v", err)
	}
	fmt.Println("deleted")
}

func runLogout(session *client.Session) {
	if err := session.Logout(); err != nil {
		fatal("logout: %v", err)
	}
	fmt.Println("logged out")
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("encode output: %v", err)
	}
	fmt.Println(string(data))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
