package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/config"
	"hashvote/core"
)

const lockFile = "hashvote.lock"

var daemonize bool
var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Start the voting server",
	RunE:         startCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&daemonize, "daemon", "d", false, "run with daemon?")
	RootCmd.RunE = startCmdF
}

func startCmdF(cmd *cobra.Command, args []string) error {
	// 后台启动
	if daemonize {
		runDaemon()
	}

	interruptChan := make(chan os.Signal, 1)
	// 加载配置文件
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Errorf("Error loading configuration: %v", err.Error())
		return err
	}
	// 启动服务器
	return runServer(cfg, interruptChan)
}

func runDaemon() {
	// 获取应用名
	app, dir := getAppDir()

	// 拿到启动命令并自启动
	bin := fmt.Sprintf("%s/%s", dir, app)
	command := exec.Command(bin, "start")
	command.Start()

	// 打印日志
	log.Infof("Server start, [PID] %d running...", command.Process.Pid)
	ioutil.WriteFile(lockFile, []byte(fmt.Sprintf("%d", command.Process.Pid)), 0666)
	daemonize = false
	os.Exit(0)
}

func runServer(cfg *config.Config, interruptChan chan os.Signal) error {
	initLogger(cfg)

	server := core.NewServer(cfg)
	defer server.Close()

	server.Start()

	// wait for kill signal before attempting to gracefully shutdown
	// the running service
	signal.Notify(interruptChan, syscall.SIGINT, syscall.SIGTERM)
	<-interruptChan

	return nil
}
