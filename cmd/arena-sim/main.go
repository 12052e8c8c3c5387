// arena-sim 无头运行竞技场：自动驾驶操控玩家，打印每关结果
//
// 用法：
//
//	go run ./cmd/arena-sim -level 1 -chain -ticks 36000
//	go run ./cmd/arena-sim -level 4 -metrics-addr :9090 -verbose
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/decker502/arena/pkg/app"
	"github.com/decker502/arena/pkg/arena"
	"github.com/decker502/arena/pkg/game"
	"github.com/decker502/arena/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quasilyte/gdata/v2"
)

var (
	levelFlag   = flag.String("level", app.DefaultLevel, "起始关卡ID")
	ticksFlag   = flag.Int("ticks", 60*60*5, "最多推进的 tick 数")
	dataFlag    = flag.String("data", "data", "数据目录（arena.yaml、zombie_stats.yaml、levels/）")
	chainFlag   = flag.Bool("chain", false, "胜利后继续下一关")
	seedFlag    = flag.Int64("seed", 1, "随机种子（相同种子得到相同结果）")
	metricsFlag = flag.String("metrics-addr", "", "Prometheus 指标监听地址，如 :9090")
	saveFlag    = flag.Bool("save", false, "把结果写入本地分数榜")
	verbose     = flag.Bool("verbose", false, "显示详细日志")
)

// simOptions 一次无头运行的参数
type simOptions struct {
	Level    string
	MaxTicks int
	Chain    bool
	Seed     int64
	Content  *app.Content
	Metrics  *game.MetricsRecorder
	Scores   *game.ScoreBoard
}

// simResult 运行结束时的汇总
type simResult struct {
	Ticks   int
	Records []game.RunRecord
}

// errStalled 关卡切换失败，无法继续
var errStalled = errors.New("simulation stalled")

func run(opts simOptions) (*simResult, error) {
	if opts.MaxTicks <= 0 {
		return nil, fmt.Errorf("max ticks must be positive, got %d", opts.MaxTicks)
	}

	session, err := app.NewSession(app.SessionOptions{
		Content: opts.Content,
		Metrics: opts.Metrics,
		Scores:  opts.Scores,
		Rand:    rand.New(rand.NewSource(opts.Seed)),
	})
	if err != nil {
		return nil, err
	}
	a := session.Arena

	if res := a.TransitionTo(opts.Level); !res.Success {
		return nil, fmt.Errorf("%w: level %s: %v", errStalled, opts.Level, res.Err)
	}

	pilot := arena.NewAutopilot(a)
	dt := a.Config().TickDelta()
	result := &simResult{}

	for result.Ticks < opts.MaxTicks {
		start := time.Now()
		if a.Tick(pilot.Next(), dt) && opts.Metrics != nil {
			opts.Metrics.ObserveTick(time.Since(start))
		}
		result.Ticks++

		gs := a.State()
		if !gs.IsFinished() {
			continue
		}
		next := a.NextLevel()
		if !opts.Chain || gs.Outcome != types.OutcomeVictory || next == "" {
			break
		}
		if res := a.TransitionTo(next); !res.Success {
			result.Records = session.Records()
			return result, fmt.Errorf("%w: level %s: %v", errStalled, next, res.Err)
		}
	}

	result.Records = session.Records()
	if len(result.Records) == 0 {
		log.Printf("[arena-sim] Level %s still running after %d ticks", a.State().LevelID, result.Ticks)
	}
	return result, nil
}

// printResult 以表格输出每关结果
func printResult(w io.Writer, r *simResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tOUTCOME\tSCORE\tKILLS\tWAVE\tTIME")
	for _, rec := range r.Records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1fs\n",
			rec.LevelID, rec.Outcome, rec.Score, rec.Kills, rec.Wave, rec.Duration)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d ticks simulated\n", r.Ticks)
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	content, err := app.LoadContent(os.DirFS(*dataFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load data from %s: %v\n", *dataFlag, err)
		os.Exit(1)
	}

	opts := simOptions{
		Level:    *levelFlag,
		MaxTicks: *ticksFlag,
		Chain:    *chainFlag,
		Seed:     *seedFlag,
		Content:  content,
	}

	if *metricsFlag != "" {
		reg := prometheus.NewRegistry()
		opts.Metrics = game.NewMetricsRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", game.MetricsHandler(reg))
		go func() {
			if err := http.ListenAndServe(*metricsFlag, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	if *saveFlag {
		store, err := gdata.Open(gdata.Config{AppName: app.AppName})
		if err != nil {
			fmt.Fprintf(os.Stderr, "local storage unavailable: %v\n", err)
			os.Exit(1)
		}
		scores, err := game.NewScoreBoard(store)
		if err != nil {
			log.Printf("[arena-sim] Warning: %v", err)
		}
		opts.Scores = scores
	}

	result, err := run(opts)
	if result != nil {
		printResult(os.Stdout, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena-sim: %v\n", err)
		os.Exit(1)
	}
}
