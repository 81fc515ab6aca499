// Package cli 实现 astrolink-cli 的子命令。
// 全局旗标在命令名之前给出，命令自己的旗标跟在命令名之后；
// 建连属性来自属性文件（config 命令维护），--instance/--processor 可临时覆盖。
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"astrolink-client/client"
	"astrolink-client/config"
	"astrolink-client/logger"

	"go.uber.org/zap"
)

const rootUsage = `usage: astrolink-cli [--config PATH] [--instance NAME] [--processor NAME] [-v] COMMAND ...

Commands:
  alarms      Read and acknowledge alarms
  commands    Issue telecommands
  config      Manage client properties
  containers  Read containers
  links       Manage data links
  parameters  Read and write parameters
  storage     Manage object storage

Run 'astrolink-cli COMMAND --help' for more information on a command.
`

// App 一次 CLI 调用。输出流可注入，便于测试捕获。
type App struct {
	stdout io.Writer
	stderr io.Writer
}

// New 创建 App
func New(stdout, stderr io.Writer) *App {
	return &App{stdout: stdout, stderr: stderr}
}

// usageError 命令行用法错误（退出码 2，其余错误退出码 1）
type usageError struct {
	message string
}

func (e *usageError) Error() string {
	return e.message
}

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

// session 一次调用解析出的运行环境
type session struct {
	store     *config.Store
	core      config.Core
	logger    *zap.Logger
	instance  string
	processor string
}

// client 按属性建客户端
func (s *session) client() *client.Client {
	opts := []client.Option{client.WithLogger(s.logger)}
	if s.core.TLS {
		opts = append(opts, client.WithTLS())
	}
	return client.NewClient(s.core.Address(), opts...)
}

// requireInstance 多数命令要求指定实例
func (s *session) requireInstance() (string, error) {
	if s.instance == "" {
		return "", usageErrorf("no instance specified; run 'astrolink-cli config set instance NAME' or pass --instance")
	}
	return s.instance, nil
}

// signalContext 长驻命令（watch 等）用的上下文，Ctrl-C 即取消
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Run 解析参数并执行命令，返回进程退出码
func (a *App) Run(args ...string) int {
	flags := flag.NewFlagSet("astrolink-cli", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	flags.Usage = func() { fmt.Fprint(a.stderr, rootUsage) }

	var (
		showVersion = flags.Bool("version", false, "print version information and quit")
		configPath  = flags.String("config", "", "path to the client properties file")
		instance    = flags.String("instance", "", "server instance, overrides the instance property")
		processor   = flags.String("processor", "", "processor, overrides the processor property")
		verbose     = flags.Bool("v", false, "verbose logging")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintf(a.stdout, "astrolink-cli %s\n", client.Version)
		return 0
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	if err := a.dispatch(flags.Args(), *configPath, *instance, *processor, *verbose); err != nil {
		fmt.Fprintf(a.stderr, "astrolink-cli: %v\n", err)
		if _, ok := err.(*usageError); ok {
			return 2
		}
		return 1
	}
	return 0
}

func (a *App) dispatch(args []string, configPath, instance, processor string, verbose bool) error {
	store, err := config.Open(configPath)
	if err != nil {
		return err
	}

	log, err := logger.NewCLILogger(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	core := store.Core()
	s := &session{
		store:     store,
		core:      core,
		logger:    log,
		instance:  core.Instance,
		processor: core.Processor,
	}
	if instance != "" {
		s.instance = instance
	}
	if processor != "" {
		s.processor = processor
	}
	if s.processor == "" {
		s.processor = "realtime"
	}

	command, rest := args[0], args[1:]
	switch command {
	case "alarms":
		return a.runAlarms(s, rest)
	case "commands":
		return a.runCommands(s, rest)
	case "config":
		return a.runConfig(s, rest)
	case "containers":
		return a.runContainers(s, rest)
	case "links":
		return a.runLinks(s, rest)
	case "parameters":
		return a.runParameters(s, rest)
	case "storage":
		return a.runStorage(s, rest)
	case "help":
		fmt.Fprint(a.stdout, rootUsage)
		return nil
	default:
		return usageErrorf("unknown command %q\n%s", command, rootUsage)
	}
}
