package cli

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"astrolink-client/tmtc"
)

const alarmsUsage = `usage: astrolink-cli alarms COMMAND ...

Commands:
  list         List active alarms
  acknowledge  Acknowledge an alarm
  watch        Follow alarm notifications until interrupted
`

// runAlarms 报警的查看、确认与跟踪
func (a *App) runAlarms(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing alarms command\n%s", alarmsUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}
	processor := tmtc.NewProcessorClient(s.client(), instance, s.processor)

	switch args[0] {
	case "list":
		ctx, cancel := signalContext()
		defer cancel()
		alarms, err := processor.ListAlarms(ctx, nil, nil)
		if err != nil {
			return err
		}
		rows := [][]string{{"NAME", "SEQ", "SEVERITY", "VIOLATIONS", "ACKNOWLEDGED"}}
		for _, alarm := range alarms {
			rows = append(rows, alarmRow(alarm))
		}
		printTable(a.stdout, rows)
		return nil

	case "acknowledge":
		flags := flag.NewFlagSet("alarms acknowledge", flag.ContinueOnError)
		flags.SetOutput(a.stderr)
		comment := flags.String("comment", "", "comment to attach to the acknowledgment")
		if err := flags.Parse(args[1:]); err != nil {
			return &usageError{message: "invalid alarms acknowledge flags"}
		}
		if flags.NArg() != 2 {
			return usageErrorf("usage: astrolink-cli alarms acknowledge [--comment TEXT] NAME SEQNUM")
		}
		seqNum, err := strconv.ParseInt(flags.Arg(1), 10, 32)
		if err != nil {
			return usageErrorf("sequence number %q is not a number", flags.Arg(1))
		}
		return a.acknowledgeAlarm(processor, flags.Arg(0), int32(seqNum), *comment)

	case "watch":
		return a.watchAlarms(processor)

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, alarmsUsage)
		return nil

	default:
		return usageErrorf("unknown alarms command %q\n%s", args[0], alarmsUsage)
	}
}

// acknowledgeAlarm 在活跃报警里找 (名字, 序号) 对应的实例并确认。
// 序号必须显式给出：同名参数先后产生的报警是不同实例，不能默认确认最新的。
func (a *App) acknowledgeAlarm(processor *tmtc.ProcessorClient, name string, seqNum int32, comment string) error {
	ctx, cancel := signalContext()
	defer cancel()

	alarms, err := processor.ListAlarms(ctx, nil, nil)
	if err != nil {
		return err
	}
	for _, alarm := range alarms {
		seq, ok := alarm.SequenceNumber()
		if alarm.Name() == name && ok && seq == seqNum {
			return processor.AcknowledgeAlarm(ctx, alarm, comment)
		}
	}
	return fmt.Errorf("no active alarm %s with sequence number %d", name, seqNum)
}

// watchAlarms 跟踪报警通知，直到收到中断信号
func (a *App) watchAlarms(processor *tmtc.ProcessorClient) error {
	ctx, cancel := signalContext()
	defer cancel()

	sub, err := processor.CreateAlarmSubscription(ctx, tmtc.AlarmSubscriptionOptions{
		OnData: func(event *tmtc.AlarmEvent) {
			alarm := event.Alarm()
			line := time.Now().UTC().Format(time.RFC3339) + " [" + event.EventType() + "] " + alarm.Name()
			if seq, ok := alarm.SequenceNumber(); ok {
				line += fmt.Sprintf(" seq=%d", seq)
			}
			if violations, ok := alarm.ViolationCount(); ok {
				line += fmt.Sprintf(" violations=%d", violations)
			}
			fmt.Fprintln(a.stdout, line)
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

func alarmRow(alarm *tmtc.Alarm) []string {
	seq := ""
	if s, ok := alarm.SequenceNumber(); ok {
		seq = strconv.FormatInt(int64(s), 10)
	}
	severity := ""
	if value := alarm.MostSevereValue(); value != nil {
		if result, ok := value.MonitoringResult(); ok {
			severity = result
		}
	}
	violations := ""
	if v, ok := alarm.ViolationCount(); ok {
		violations = strconv.FormatInt(int64(v), 10)
	}
	acknowledged := strconv.FormatBool(alarm.IsAcknowledged())
	return []string{alarm.Name(), seq, severity, violations, acknowledged}
}
