package cli

import (
	"context"
	"fmt"
	"time"

	"astrolink-client/mdb"
)

const containersUsage = `usage: astrolink-cli containers COMMAND ...

Commands:
  list      List containers
  describe  Describe a container
`

// runContainers 容器定义的查看
func (a *App) runContainers(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing containers command\n%s", containersUsage)
	}
	instance, err := s.requireInstance()
	if err != nil {
		return err
	}
	mdbClient := mdb.NewClient(s.client(), instance)

	switch args[0] {
	case "list":
		containers, err := mdbClient.ListContainers(context.Background(), mdb.ListContainersOptions{})
		if err != nil {
			return err
		}
		rows := [][]string{{"NAME", "DESCRIPTION"}}
		for _, container := range containers {
			description, _ := container.Description()
			rows = append(rows, []string{container.QualifiedName(), description})
		}
		printTable(a.stdout, rows)
		return nil

	case "describe":
		if len(args) != 2 {
			return usageErrorf("usage: astrolink-cli containers describe NAME")
		}
		container, err := mdbClient.GetContainer(context.Background(), args[1])
		if err != nil {
			return err
		}
		fields := [][2]string{
			{"name", container.Name()},
			{"qualified_name", container.QualifiedName()},
		}
		if description, ok := container.Description(); ok {
			fields = append(fields, [2]string{"description", description})
		}
		if maxInterval, ok := container.MaxInterval(); ok {
			fields = append(fields, [2]string{"max_interval", maxInterval.Round(time.Millisecond).String()})
		}
		if base, ok := container.BaseContainer(); ok {
			fields = append(fields, [2]string{"base_container", base})
		}
		printFields(a.stdout, fields)
		return nil

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, containersUsage)
		return nil

	default:
		return usageErrorf("unknown containers command %q\n%s", args[0], containersUsage)
	}
}
