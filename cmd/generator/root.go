package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"generator/internal/config"
	"generator/internal/logging"
	"generator/internal/report"
)

// app 命令共享的运行环境
type app struct {
	configPath string
	verbose    bool

	cfg    *config.AppConfig
	info   config.LoadConfigInfo
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "generator",
		Short:         "节能绩效报告生成器",
		Long:          "读取量测与变量工作簿，整理成报告上下文，并合并 Word 模板生成报告。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config.toml 路径（默认为可执行文件同目录）")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出 debug 日志")

	root.AddCommand(newServeCmd(a), newGenerateCmd(a), newInspectCmd(a), newConfigCmd(a))
	return root
}

// init 加载配置并构建日志
func (a *app) init() error {
	var err error
	if a.configPath != "" {
		a.cfg, a.info, err = config.Load(a.configPath)
	} else {
		a.cfg, a.info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	a.logger, err = logging.New(logging.Options{Verbose: a.verbose, DevMode: a.cfg.Server.DevMode})
	if err != nil {
		return err
	}
	a.logger.Debug("config loaded",
		zap.String("path", a.info.Path),
		zap.Bool("found", a.info.Found))
	return nil
}

// builder 按配置创建上下文构建器
func (a *app) builder(variableSheet string) (*report.Builder, error) {
	rules, err := a.cfg.Rules.Apply(nil)
	if err != nil {
		return nil, err
	}
	if variableSheet == "" {
		variableSheet = a.cfg.Report.VariableSheet
	}
	return report.NewBuilder(rules, report.WithVariableSheet(variableSheet)), nil
}
