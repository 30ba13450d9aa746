package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"shopmate-backend/internal/config"
	"shopmate-backend/pkg/client"
	"shopmate-backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init("warn", cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	clientCfg := client.Config{
		BaseURL:     cfg.Client.BaseURL,
		Timeout:     client.TimeoutFromMillis(cfg.Client.TimeoutMS),
		Debug:       cfg.Client.Debug,
		MaxMessages: cfg.Client.MaxMessages,
		SessionPath: cfg.Client.SessionPath,
	}

	ctrl := client.NewController(clientCfg)
	defer ctrl.Close()

	fmt.Println("ShopMate 手机导购助手（输入 quit 退出，new 开启新会话）")
	fmt.Printf("会话: %s\n\n", ctrl.SessionToken())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "quit", "exit":
			return
		case "new":
			ctrl.NewSession()
			fmt.Printf("已开启新会话: %s\n", ctrl.SessionToken())
			continue
		case "":
			continue
		}

		msg, err := ctrl.Send(context.Background(), line)
		if err != nil {
			fmt.Printf("发送失败: %v\n", err)
			continue
		}
		if msg == nil {
			continue
		}

		if msg.Status == client.StatusError {
			fmt.Printf("出错了: %v\n\n", msg.Err)
			continue
		}

		fmt.Printf("\n%s\n", msg.Content)
		printRecords(msg.Records)
		fmt.Println()
	}
}

func printRecords(records []client.ProductRecord) {
	if len(records) == 0 {
		return
	}

	fmt.Println()
	for _, rec := range records {
		name := rec.Name
		if name == "" {
			name = rec.ID
		}
		fmt.Printf("  • %s", name)
		if rec.Price != "" {
			fmt.Printf("  %s", rec.Price)
		}
		fmt.Println()
		for _, h := range client.BuildHighlights(rec) {
			fmt.Printf("      %s\n", h)
		}
	}

	if len(records) >= 2 && len(records) <= 3 {
		fmt.Println("\n  对比:")
		for _, row := range client.BuildComparison(records) {
			fmt.Printf("    %-14s %s\n", row.Label, strings.Join(row.Values, " | "))
		}
	}
}
