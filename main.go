package main

import (
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/decker502/arena/pkg/app"
	"github.com/decker502/arena/pkg/embedded"
	"github.com/decker502/arena/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose = flag.Bool("verbose", false, "显示详细日志")
	level   = flag.String("level", "", "起始关卡ID，为空时从存档继续")
	dataDir = flag.String("data", "", "从磁盘目录读取配置和关卡（默认使用嵌入数据）")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	var data fs.FS
	if *dataDir != "" {
		data = os.DirFS(*dataDir)
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Level:   *level,
		Data:    data,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ebiten.SetWindowSize(scenes.WindowWidth, scenes.WindowHeight)
	ebiten.SetWindowTitle("Zombie Arena")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
