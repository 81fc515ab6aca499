package cli

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"astrolink-client/tmtc"
)

const commandsUsage = `usage: astrolink-cli commands COMMAND ...

Commands:
  issue  Issue a telecommand
  watch  Follow command history updates until interrupted
`

// commandArgs 可重复的 --arg NAME=VALUE 旗标
type commandArgs struct {
	values map[string]interface{}
}

func (c *commandArgs) String() string {
	return ""
}

func (c *commandArgs) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected NAME=VALUE, got %q", raw)
	}
	if c.values == nil {
		c.values = make(map[string]interface{})
	}
	c.values[name] = parseValueLiteral(value)
	return nil
}

// runCommands 命令下发与命令历史跟踪
func (a *App) runCommands(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing commands command\n%s", commandsUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}

	switch args[0] {
	case "issue":
		flags := flag.NewFlagSet("commands issue", flag.ContinueOnError)
		flags.SetOutput(a.stderr)
		var cmdArgs commandArgs
		flags.Var(&cmdArgs, "arg", "command argument as NAME=VALUE, repeatable")
		dryRun := flags.Bool("dry-run", false, "validate only, do not issue")
		comment := flags.String("comment", "", "comment to attach to the command")
		if err := flags.Parse(args[1:]); err != nil {
			return &usageError{message: "invalid commands issue flags"}
		}
		if flags.NArg() != 1 {
			return usageErrorf("usage: astrolink-cli commands issue [--arg NAME=VALUE]... [--dry-run] [--comment TEXT] COMMAND")
		}

		processor := tmtc.NewProcessorClient(s.client(), instance, s.processor)
		ctx, cancel := signalContext()
		defer cancel()

		issued, err := processor.IssueCommand(ctx, flags.Arg(0), tmtc.IssueCommandOptions{
			Args:    cmdArgs.values,
			DryRun:  *dryRun,
			Comment: *comment,
		})
		if err != nil {
			return err
		}

		fields := [][2]string{{"name", issued.Name()}}
		if t := issued.GenerationTime(); t != nil {
			fields = append(fields, [2]string{"generation_time", t.Format(time.RFC3339)})
		}
		if seqNum, ok := issued.SequenceNumber(); ok {
			fields = append(fields, [2]string{"sequence_number", fmt.Sprintf("%d", seqNum)})
		}
		if queue, ok := issued.Queue(); ok {
			fields = append(fields, [2]string{"queue", queue})
		}
		if source, ok := issued.Source(); ok {
			fields = append(fields, [2]string{"source", source})
		}
		if hex, ok := issued.Hex(); ok {
			fields = append(fields, [2]string{"hex", hex})
		}
		printFields(a.stdout, fields)
		return nil

	case "watch":
		return a.watchCommands(s)

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, commandsUsage)
		return nil

	default:
		return usageErrorf("unknown commands command %q\n%s", args[0], commandsUsage)
	}
}

// watchCommands 跟踪全部命令的历史更新，直到收到中断信号
func (a *App) watchCommands(s *session) error {
	ctx, cancel := signalContext()
	defer cancel()

	processor := tmtc.NewProcessorClient(s.client(), s.instance, s.processor)
	sub, err := processor.CreateCommandHistorySubscription(ctx, tmtc.CommandHistorySubscriptionOptions{
		OnData: func(record *tmtc.CommandHistory) {
			a.printCommandHistory(record)
		},
	})
	if err != nil {
		return err
	}
	defer sub.Cancel()

	select {
	case <-ctx.Done():
		return nil
	case <-sub.Done():
		return sub.Err()
	}
}

func (a *App) printCommandHistory(record *tmtc.CommandHistory) {
	line := record.GenerationTime().Format(time.RFC3339) + " " + record.Name()
	if record.IsFailed() {
		line += " FAILED"
		if message, ok := record.FailureMessage(); ok {
			line += " (" + message + ")"
		}
	} else if record.IsComplete() {
		line += " COMPLETE"
	}
	for _, event := range record.Events() {
		line += fmt.Sprintf(" %s=%s", event.Name, event.Status)
	}
	fmt.Fprintln(a.stdout, line)
}
