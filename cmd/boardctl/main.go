// Command boardctl administers a running board server from a terminal.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/labboard/api/client"
	"github.com/aouyang1/labboard/logging"
	"github.com/aouyang1/labboard/store"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "boardctl",
		Usage: "administer the lab information board",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "board server base url",
				EnvVars: []string{"LAB_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Before: func(c *cli.Context) error {
			logging.InitLogger(c.String("log-level"), "text")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "state",
				Usage: "print the display snapshot",
				Action: func(c *cli.Context) error {
					d, err := boardClient(c).GetState(c.Context)
					if err != nil {
						return err
					}
					return printJSON(d)
				},
			},
			{
				Name:  "hours",
				Usage: "print this week's opening hours",
				Action: func(c *cli.Context) error {
					hours, err := boardClient(c).GetHours(c.Context)
					if err != nil {
						return err
					}
					fmt.Println(hours.Summary)
					for _, row := range hours.Rows {
						slots := make([]string, 0, len(row.Slots))
						for _, s := range row.Slots {
							slots = append(slots, s.Label+" "+s.Time)
						}
						if row.Closed {
							slots = append(slots, "Closed")
						}
						fmt.Printf("%-10s %s\n", row.Day, strings.Join(slots, ", "))
					}
					return nil
				},
			},
			{
				Name:  "events",
				Usage: "print upcoming events",
				Action: func(c *cli.Context) error {
					evs, err := boardClient(c).GetEvents(c.Context)
					if err != nil {
						return err
					}
					return printJSON(evs)
				},
			},
			{
				Name:  "settings",
				Usage: "print the stored settings",
				Action: func(c *cli.Context) error {
					s, err := boardClient(c).GetSettings(c.Context)
					if err != nil {
						return err
					}
					return printJSON(s)
				},
			},
			setCommand(),
			{
				Name:  "reset",
				Usage: "restore the default settings",
				Action: func(c *cli.Context) error {
					s, err := boardClient(c).ResetSettings(c.Context)
					if err != nil {
						return err
					}
					return printJSON(s)
				},
			},
			{
				Name:      "status",
				Usage:     "set the manual status",
				ArgsUsage: "open|closed",
				Action: func(c *cli.Context) error {
					var status store.Status
					switch strings.ToLower(c.Args().First()) {
					case "open":
						status = store.StatusOpen
					case "closed":
						status = store.StatusClosed
					default:
						return cli.Exit("status must be open or closed", 2)
					}
					d, err := boardClient(c).QuickStatus(c.Context, status)
					if err != nil {
						return err
					}
					fmt.Println(d.Hero.Status)
					return nil
				},
			},
			{
				Name:  "next",
				Usage: "advance to the next slide",
				Action: func(c *cli.Context) error {
					nav, err := boardClient(c).Next(c.Context)
					if err != nil {
						return err
					}
					return printJSON(nav)
				},
			},
			{
				Name:  "prev",
				Usage: "go back to the previous slide",
				Action: func(c *cli.Context) error {
					nav, err := boardClient(c).Prev(c.Context)
					if err != nil {
						return err
					}
					return printJSON(nav)
				},
			},
			{
				Name:      "goto",
				Usage:     "show the slide at index",
				ArgsUsage: "index",
				Action: func(c *cli.Context) error {
					index, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return cli.Exit("index must be an integer", 2)
					}
					nav, err := boardClient(c).Goto(c.Context, index)
					if err != nil {
						return err
					}
					return printJSON(nav)
				},
			},
			{
				Name:      "display",
				Usage:     "print or switch the kiosk display power",
				ArgsUsage: "[on|off]",
				Action: func(c *cli.Context) error {
					bc := boardClient(c)
					var (
						enabled bool
						err     error
					)
					switch strings.ToLower(c.Args().First()) {
					case "":
						enabled, err = bc.GetDisplay(c.Context)
					case "on":
						enabled, err = bc.SetDisplay(c.Context, true)
					case "off":
						enabled, err = bc.SetDisplay(c.Context, false)
					default:
						return cli.Exit("display state must be on or off", 2)
					}
					if err != nil {
						return err
					}
					if enabled {
						fmt.Println("on")
					} else {
						fmt.Println("off")
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setCommand edits settings through the same form the admin modal submits. Flags that are
// not given keep their stored value.
func setCommand() *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "update board settings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title"},
			&cli.StringFlag{Name: "subtitle"},
			&cli.StringFlag{Name: "location"},
			&cli.StringFlag{Name: "close-time"},
			&cli.StringFlag{Name: "refresh-minutes"},
			&cli.StringFlag{Name: "banner"},
			&cli.BoolFlag{Name: "banner-visible"},
			&cli.BoolFlag{Name: "auto-status"},
			&cli.StringFlag{Name: "hero-image-url"},
			&cli.BoolFlag{Name: "rotate"},
			&cli.StringFlag{Name: "rotate-seconds"},
			&cli.StringSliceFlag{Name: "show", Usage: "slide keys to show"},
			&cli.StringSliceFlag{Name: "hide", Usage: "slide keys to hide"},
		},
		Action: func(c *cli.Context) error {
			bc := boardClient(c)
			form, err := bc.GetForm(c.Context)
			if err != nil {
				return err
			}

			setString := func(name string, dst *string) {
				if c.IsSet(name) {
					*dst = c.String(name)
				}
			}
			setBool := func(name string, dst *bool) {
				if c.IsSet(name) {
					*dst = c.Bool(name)
				}
			}
			setString("title", &form.Title)
			setString("subtitle", &form.Subtitle)
			setString("location", &form.Location)
			setString("close-time", &form.CloseTime)
			setString("refresh-minutes", &form.RefreshMinutes)
			setString("banner", &form.BannerText)
			setBool("banner-visible", &form.BannerVisible)
			setBool("auto-status", &form.AutoStatus)
			setBool("rotate", &form.RotateEnabled)
			setString("rotate-seconds", &form.RotateSeconds)
			if c.IsSet("hero-image-url") {
				url := c.String("hero-image-url")
				form.HeroImageURL = &url
			}
			if form.Slides == nil {
				form.Slides = map[string]bool{}
			}
			for _, key := range c.StringSlice("show") {
				form.Slides[key] = true
			}
			for _, key := range c.StringSlice("hide") {
				form.Slides[key] = false
			}

			s, err := bc.SaveSettings(c.Context, form)
			if err != nil {
				return err
			}
			return printJSON(s)
		},
	}
}

func boardClient(c *cli.Context) *client.BoardClient {
	return client.NewBoardClient(c.String("server"))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
