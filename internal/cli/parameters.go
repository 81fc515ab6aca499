package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"astrolink-client/mdb"
	"astrolink-client/tmtc"
)

const parametersUsage = `usage: astrolink-cli parameters COMMAND ...

Commands:
  list      List parameters
  describe  Describe a parameter
  get       Print a parameter's current value
  set       Write the value of a software parameter
  watch     Follow parameter updates until interrupted
`

// runParameters 参数定义与参数值的读写
func (a *App) runParameters(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing parameters command\n%s", parametersUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}
	c := s.client()

	switch args[0] {
	case "list":
		mdbClient := mdb.NewClient(c, instance)
		parameters, err := mdbClient.ListParameters(context.Background(), mdb.ListParametersOptions{})
		if err != nil {
			return err
		}
		rows := [][]string{{"NAME", "DATA SOURCE"}}
		for _, parameter := range parameters {
			source, _ := parameter.DataSource()
			rows = append(rows, []string{parameter.QualifiedName(), source})
		}
		printTable(a.stdout, rows)
		return nil

	case "describe":
		if len(args) != 2 {
			return usageErrorf("usage: astrolink-cli parameters describe NAME")
		}
		mdbClient := mdb.NewClient(c, instance)
		parameter, err := mdbClient.GetParameter(context.Background(), args[1])
		if err != nil {
			return err
		}
		a.describeParameter(parameter)
		return nil

	case "get":
		flags := flag.NewFlagSet("parameters get", flag.ContinueOnError)
		flags.SetOutput(a.stderr)
		fromCache := flags.Bool("from-cache", true, "return the cached value instead of waiting for a fresh one")
		timeout := flags.Duration("timeout", 10*time.Second, "how long to wait for a fresh value")
		if err := flags.Parse(args[1:]); err != nil {
			return &usageError{message: "invalid parameters get flags"}
		}
		if flags.NArg() != 1 {
			return usageErrorf("usage: astrolink-cli parameters get [--from-cache] [--timeout D] NAME")
		}

		processor := tmtc.NewProcessorClient(c, instance, s.processor)
		pv, err := processor.GetParameterValue(context.Background(), flags.Arg(0), *fromCache, *timeout)
		if err != nil {
			return err
		}
		if pv == nil {
			fmt.Fprintln(a.stdout, "no value")
			return nil
		}
		a.printParameterValue(pv)
		return nil

	case "set":
		if len(args) != 3 {
			return usageErrorf("usage: astrolink-cli parameters set NAME VALUE")
		}
		processor := tmtc.NewProcessorClient(c, instance, s.processor)
		return processor.SetParameterValue(context.Background(), args[1], parseValueLiteral(args[2]))

	case "watch":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli parameters watch NAME ...")
		}
		return a.watchParameters(s, args[1:])

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, parametersUsage)
		return nil

	default:
		return usageErrorf("unknown parameters command %q\n%s", args[0], parametersUsage)
	}
}

func (a *App) describeParameter(parameter *mdb.Parameter) {
	fields := [][2]string{
		{"name", parameter.Name()},
		{"qualified_name", parameter.QualifiedName()},
	}
	if description, ok := parameter.Description(); ok {
		fields = append(fields, [2]string{"description", description})
	}
	if source, ok := parameter.DataSource(); ok {
		fields = append(fields, [2]string{"data_source", source})
	}
	if engType, ok := parameter.EngineeringType(); ok {
		fields = append(fields, [2]string{"type", engType})
	}
	if units := parameter.Units(); len(units) > 0 {
		fields = append(fields, [2]string{"units", strings.Join(units, " ")})
	}
	for _, alias := range parameter.Aliases() {
		fields = append(fields, [2]string{"alias", alias.Namespace + "/" + alias.Name})
	}
	printFields(a.stdout, fields)
}

func (a *App) printParameterValue(pv *tmtc.ParameterValue) {
	line := pv.Name()
	if t := pv.GenerationTime(); t != nil {
		line = t.Format(time.RFC3339) + " " + line
	}
	if eng, ok := pv.EngValue(); ok {
		line += fmt.Sprintf(" %v", eng)
	} else if raw, ok := pv.RawValue(); ok {
		line += fmt.Sprintf(" (raw) %v", raw)
	}
	if result, ok := pv.MonitoringResult(); ok {
		line += " [" + result + "]"
	}
	fmt.Fprintln(a.stdout, line)
}

// watchParameters 订阅并打印参数更新，直到收到中断信号
func (a *App) watchParameters(s *session, parameters []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	c := s.client()
	processor := tmtc.NewProcessorClient(c, s.instance, s.processor)
	opts := tmtc.DefaultParameterSubscriptionOptions(parameters...)
	opts.OnData = func(data *tmtc.ParameterData) {
		for _, pv := range data.Parameters() {
			a.printParameterValue(pv)
		}
	}

	sub, err := processor.CreateParameterSubscription(ctx, opts)
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

// parseValueLiteral 把命令行字面量转成最贴切的 Go 值：
// 整数、小数、布尔依次尝试，都不是就按字符串下发
func parseValueLiteral(raw string) interface{} {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return raw
}
