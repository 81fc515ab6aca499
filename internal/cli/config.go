package cli

import (
	"fmt"
)

const configUsage = `usage: astrolink-cli config COMMAND ...

Commands:
  list    List client properties
  get     Get value of client property
  set     Set client property
  unset   Unset client property
`

// runConfig 维护属性文件（core 节）
func (a *App) runConfig(s *session, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing config command\n%s", configUsage)
	}

	switch args[0] {
	case "list":
		fmt.Fprintln(a.stdout, "[core]")
		for _, line := range s.store.List() {
			fmt.Fprintln(a.stdout, line)
		}
		return nil

	case "get":
		if len(args) != 2 {
			return usageErrorf("usage: astrolink-cli config get PROPERTY")
		}
		// 属性不存在时保持沉默，与脚本里的条件判断配合
		if value, ok := s.store.Get(args[1]); ok {
			fmt.Fprintln(a.stdout, value)
		}
		return nil

	case "set":
		if len(args) != 3 {
			return usageErrorf("usage: astrolink-cli config set PROPERTY VALUE")
		}
		return s.store.Set(args[1], args[2])

	case "unset":
		if len(args) != 2 {
			return usageErrorf("usage: astrolink-cli config unset PROPERTY")
		}
		return s.store.Unset(args[1])

	case "--help", "-h", "help":
		fmt.Fprint(a.stdout, configUsage)
		return nil

	default:
		return usageErrorf("unknown config command %q\n%s", args[0], configUsage)
	}
}
