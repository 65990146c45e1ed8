package application

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewRootCommand 构建应用根命令
// serve: 启动 Worker；contracts: 巡检契约绑定（只做 Setup，不起服务）
func NewRootCommand(app *WorkerApplication) *cobra.Command {
	root := &cobra.Command{
		Use:           app.Name(),
		Short:         app.Name() + " worker application",
		Version:       app.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(app),
		NewContractsCommand(app),
	)
	return root
}

// newServeCommand serve 子命令：阻塞运行到收到关闭信号
func newServeCommand(app *WorkerApplication) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the worker and serve HTTP requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run()
		},
	}
}

// NewContractsCommand contracts 子命令：列出全部契约绑定
// 输出按契约名排序；每个契约列出全部实现，active 实现带 [active] 标记
func NewContractsCommand(app *WorkerApplication) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List contract bindings and their active implementations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(); err != nil {
				return fmt.Errorf("setup failed: %w", err)
			}

			reg := app.Container().Registry()
			details := reg.ContractDetails()
			out := cmd.OutOrStdout()

			for _, ct := range reg.SortedContracts() {
				d := details[ct]
				fmt.Fprintf(out, "%s\n", ct.String())

				impls := make([]string, 0, len(d.Implementations))
				for _, im := range d.Implementations {
					line := fmt.Sprintf("  %s::%s (%s)", im.Module, im.ShortName(), im.Type.String())
					if im.Type == d.Active.Type {
						line += " [active]"
					}
					impls = append(impls, line)
				}
				sort.Strings(impls)
				for _, line := range impls {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}
