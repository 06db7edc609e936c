package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"generator/internal/generator"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		excelPath     string
		templates     []string
		outDir        string
		variableSheet string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "合并模板生成报告",
		Example: `  generator generate --excel data.xlsx --template 報告.docx --out ./out
  generator generate --excel data.xlsx --template a.docx --template b.docx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := a.builder(variableSheet)
			if err != nil {
				return err
			}

			book, err := os.ReadFile(excelPath)
			if err != nil {
				return fmt.Errorf("读取工作簿失败: %w", err)
			}
			req := generator.Request{
				WorkbookName: filepath.Base(excelPath),
				Workbook:     book,
			}
			for _, path := range templates {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("读取模板失败: %w", err)
				}
				req.Templates = append(req.Templates, generator.Template{Name: filepath.Base(path), Data: data})
			}

			coordinator := generator.NewCoordinator(builder, generator.WithLogger(a.logger))
			res, err := coordinator.Generate(context.Background(), req)
			if err != nil {
				return err
			}

			target := filepath.Join(outDir, res.FileName)
			if err := writeFileAtomic(target, res.Data); err != nil {
				return fmt.Errorf("写入结果失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
	cmd.Flags().StringVar(&excelPath, "excel", "", "工作簿路径 (.xlsx)")
	cmd.Flags().StringArrayVar(&templates, "template", nil, "Word 模板路径，可重复指定")
	cmd.Flags().StringVar(&outDir, "out", ".", "输出目录")
	cmd.Flags().StringVar(&variableSheet, "variable-sheet", "", "变量页名称（覆盖配置）")
	_ = cmd.MarkFlagRequired("excel")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		excelPath     string
		variableSheet string
		withReport    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "输出工作簿整理后的报告上下文 (JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := a.builder(variableSheet)
			if err != nil {
				return err
			}
			book, err := os.ReadFile(excelPath)
			if err != nil {
				return fmt.Errorf("读取工作簿失败: %w", err)
			}

			coordinator := generator.NewCoordinator(builder, generator.WithLogger(a.logger))
			ctx, rep, err := coordinator.BuildContext(filepath.Base(excelPath), book)
			if err != nil {
				return err
			}

			var out any = ctx
			if withReport {
				out = map[string]any{"context": ctx, "report": rep}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&excelPath, "excel", "", "工作簿路径 (.xlsx)")
	cmd.Flags().StringVar(&variableSheet, "variable-sheet", "", "变量页名称（覆盖配置）")
	cmd.Flags().BoolVar(&withReport, "report", false, "同时输出各 sheet 的处理结果")
	_ = cmd.MarkFlagRequired("excel")
	return cmd
}
