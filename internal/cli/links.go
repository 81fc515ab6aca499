package cli

import (
	"context"
	"fmt"
	"strconv"

	"astrolink-client/client"
)

const linksUsage = `usage: astrolink-cli links COMMAND ...

Commands:
  list      List data links
  describe  Describe a link
  enable    Enable one or more links
  disable   Disable one or more links
`

// runLinks 数据链路的查看与启停
func (a *App) runLinks(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing links command\n%s", linksUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}
	c := s.client()
	ctx := context.Background()

	switch args[0] {
	case "list":
		links, err := c.ListDataLinks(ctx, instance)
		if err != nil {
			return err
		}
		rows := [][]string{{"NAME", "CLASS", "STATUS", "IN", "OUT"}}
		for _, link := range links {
			class, _ := link.Class()
			status, _ := link.Status()
			rows = append(rows, []string{
				link.Name(),
				class,
				status,
				strconv.FormatInt(link.DataInCount(), 10),
				strconv.FormatInt(link.DataOutCount(), 10),
			})
		}
		printTable(a.stdout, rows)
		return nil

	case "describe":
		if len(args) != 2 {
			return usageErrorf("usage: astrolink-cli links describe LINK")
		}
		link, err := c.GetDataLink(ctx, instance, args[1])
		if err != nil {
			return err
		}
		a.describeLink(link)
		return nil

	case "enable":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli links enable LINK ...")
		}
		for _, name := range args[1:] {
			if err := c.EnableDataLink(ctx, instance, name); err != nil {
				return err
			}
		}
		return nil

	case "disable":
		if len(args) < 2 {
			return usageErrorf("usage: astrolink-cli links disable LINK ...")
		}
		for _, name := range args[1:] {
			if err := c.DisableDataLink(ctx, instance, name); err != nil {
				return err
			}
		}
		return nil

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, linksUsage)
		return nil

	default:
		return usageErrorf("unknown links command %q\n%s", args[0], linksUsage)
	}
}

func (a *App) describeLink(link *client.Link) {
	fields := [][2]string{
		{"name", link.Name()},
		{"instance", link.Instance()},
	}
	if class, ok := link.Class(); ok {
		fields = append(fields, [2]string{"class", class})
	}
	fields = append(fields, [2]string{"enabled", strconv.FormatBool(link.Enabled())})
	if status, ok := link.Status(); ok {
		fields = append(fields, [2]string{"status", status})
	}
	fields = append(fields,
		[2]string{"in_count", strconv.FormatInt(link.DataInCount(), 10)},
		[2]string{"out_count", strconv.FormatInt(link.DataOutCount(), 10)},
	)
	printFields(a.stdout, fields)
}
