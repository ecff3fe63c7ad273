package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dramaboxcore/internal/config"
	"dramaboxcore/internal/ctxkeys"
	"dramaboxcore/internal/logger"
	"dramaboxcore/pkg/api"
	"dramaboxcore/pkg/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	cfg     *config.Config
	log     logger.Logger
	svc     api.Service
)

// main 是命令行入口
func main() {
	root := &cobra.Command{
		Use:           "dramaboxcore",
		Short:         "DramaBox 非官方内容接口客户端",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			traceID := uuid.NewString()
			log = logger.New(logger.Options{
				Level:   cfg.Log.Level,
				Writers: cfg.Log.Writer,
				File:    cfg.Log.File,
			}).With("traceId", traceID)
			cmd.SetContext(context.WithValue(cmd.Context(), ctxkeys.TraceIDKey{}, traceID))
			svc, err = api.NewService(cfg, log)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "配置文件路径")

	root.AddCommand(deviceCmd(), tokenCmd(), classifyCmd(), searchCmd(), detailCmd(), batchCmd(), streamCmd(), resolveCmd(), urlCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func deviceCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "device",
		Short: "查看或重置设备指纹",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reset {
				return svc.ResetDevice(cmd.Context())
			}
			d, err := svc.Device(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(d)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "清除缓存的设备指纹")
	return cmd
}

func tokenCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "获取会话令牌",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := svc.Token(cmd.Context(), force)
			if err != nil {
				return err
			}
			return printJSON(t)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "强制重新握手")
	return cmd
}

func classifyCmd() *cobra.Command {
	var pageSize int
	cmd := &cobra.Command{
		Use:   "classify <feedCode>",
		Short: "按 feed 编号拉取剧目列表",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := svc.Classify(cmd.Context(), args[0], pageSize)
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 18, "分页大小")
	return cmd
}

func searchCmd() *cobra.Command {
	var pageNo, pageSize int
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "关键词搜索",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc.Search(cmd.Context(), args[0], pageNo, pageSize)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().IntVar(&pageNo, "page", 1, "页码")
	cmd.Flags().IntVar(&pageSize, "page-size", 100, "分页大小")
	return cmd
}

func detailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <bookId>",
		Short: "详情 + 推荐查询",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc.DetailWithRecommend(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func batchCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "batch <bookId>",
		Short: "加载单集元数据与 CDN 清单",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc.LoadBatch(cmd.Context(), model.BatchOptions{BookID: args[0], Index: index})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().IntVar(&index, "index", 1, "集数（1 基）")
	return cmd
}

func streamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream <bookId>",
		Short: "流页面合并数据（详情 + 批量加载）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc.StreamChapters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func urlCmd() *cobra.Command {
	var title string
	var episode int
	cmd := &cobra.Command{
		Use:   "url <bookId>",
		Short: "生成详情页与播放页路径",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return printJSON(map[string]string{
				"slug":   svc.Slugify(title),
				"drama":  svc.DramaURL(args[0], title),
				"stream": svc.StreamURL(args[0], title, episode),
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "剧目标题")
	cmd.Flags().IntVar(&episode, "episode", 1, "集数（1 基）")
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <chapter.json>",
		Short: "从单集原始载荷解析可播放地址",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			url := svc.ResolveVideoURL(model.ChapterRecord{Raw: raw})
			if url == "" {
				return fmt.Errorf("no playable source found")
			}
			fmt.Println(url)
			return nil
		},
	}
}
