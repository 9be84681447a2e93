// Command almanacctl drives a running almanac through its admin API.
//
//	almanacctl status
//	almanacctl reload
//	almanacctl set <day|month|year> <value>
//	almanacctl speed <multiplier>
//	almanacctl placeholder <participant> [token]
//	almanacctl broadcasts [limit]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/talgya/almanac/internal/adminclient"
	"github.com/talgya/almanac/internal/api"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/greeting"
)

const usage = `usage: almanacctl <command>

  status                              show the calendar and tracked keys
  reload                              re-read the server configuration
  set <day|month|year> <value>        move one calendar field
  speed <multiplier>                  change the engine speed (0 pauses)
  placeholder <participant> [token]   resolve one or every placeholder
  broadcasts [limit]                  list recent greetings`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "almanacctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	settings, err := config.LoadClientSettings()
	if err != nil {
		return err
	}
	c := adminclient.New(settings.APIURL, settings.AdminKey, settings.Timeout)
	ctx := context.Background()

	switch args[0] {
	case "status":
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s, %s (tick %d, speed %.1fx)\n", st.Date, st.Time, st.Tick, st.Speed)
		fmt.Printf("  day phase  %s\n  weather    %s\n  season     %s\n  zodiac     %s\n  holiday    %s %s\n",
			st.DayPhase, st.Weather, st.Season, st.Zodiac, st.Holiday, greeting.StripFormatting(greeting.Colorize(st.HolidayName)))
		fmt.Printf("  participants %d, chat clients %d\n", st.Participants, st.Clients)

	case "reload":
		res, err := c.Reload(ctx)
		printReply(res)
		return err

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("set needs a field and a value\n%s", usage)
		}
		res, err := c.Set(ctx, args[1], args[2])
		printReply(res)
		return err

	case "speed":
		if len(args) != 2 {
			return fmt.Errorf("speed needs a multiplier\n%s", usage)
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("speed %q: %w", args[1], err)
		}
		got, err := c.SetSpeed(ctx, v)
		if err != nil {
			return err
		}
		fmt.Printf("speed %.2f\n", got)

	case "placeholder":
		switch len(args) {
		case 3:
			v, err := c.Placeholder(ctx, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Println(greeting.StripFormatting(v))
		case 2:
			all, err := c.Placeholders(ctx, args[1])
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-16s %s\n", k, greeting.StripFormatting(all[k]))
			}
		default:
			return fmt.Errorf("placeholder needs a participant\n%s", usage)
		}

	case "broadcasts":
		limit := 20
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("limit %q: %w", args[1], err)
			}
			limit = n
		}
		rows, err := c.Broadcasts(ctx, limit)
		if err != nil {
			return err
		}
		for _, b := range rows {
			msg := greeting.StripFormatting(b.Message)
			if !b.Sent {
				msg = "(no greeting)"
			}
			fmt.Printf("%-14s %-8s %s -> %s  %s\n", b.SentAgo, b.Category, b.From, b.Key, msg)
		}

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}

// printReply shows the server's reply, which is present even for rejected
// commands.
func printReply(res *api.CommandResult) {
	if res != nil && res.Reply != "" {
		fmt.Println(greeting.StripFormatting(res.Reply))
	}
}
