package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/config"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/detector"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/runner"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.Load()
	check(err)

	parser := argparse.NewParser("compare", "Run two YOLO models side by side over the same source")
	input := parser.String("i", "input", &argparse.Options{Help: "Input image, folder, or video file", Required: true})
	modelA := parser.String("a", "model-a", &argparse.Options{Help: "First model name", Required: true})
	modelB := parser.String("b", "model-b", &argparse.Options{Help: "Second model name", Required: true})
	conf := parser.Float("", "conf", &argparse.Options{Help: "Confidence threshold", Default: float64(cfg.Confidence)})
	iou := parser.Float("", "iou", &argparse.Options{Help: "NMS IOU threshold", Default: float64(cfg.IOU)})
	delay := parser.Int("", "delay", &argparse.Options{Help: "Per-frame delay in milliseconds", Default: cfg.DelayMS})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	st, err := os.Stat(*input)
	check(err)
	var spec source.Spec
	switch {
	case st.IsDir():
		spec = source.Spec{Mode: source.ModeFolder, Path: *input}
	case source.IsImageFile(*input):
		spec = source.Spec{Mode: source.ModeImage, Path: *input}
	default:
		spec = source.Spec{Mode: source.ModeVideo, Path: *input}
	}

	logger, _ := logs.NewLog()

	runCfg := runner.NewDualConfig(*modelA, *modelB, spec)
	runCfg.ModelsDir = cfg.ModelsDir
	runCfg.Confidence = float32(*conf)
	runCfg.IOU = float32(*iou)
	runCfg.DelayMS = *delay
	runCfg.FPSWindow = cfg.FPSWindowCompare

	ctrl := detector.NewController(logger)
	watcher := ctrl.AddWatcher()
	check(ctrl.StartCompare(runCfg))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Infof("Interrupted, stopping")
		ctrl.Stop()
	}()

	// Watcher channels stay open across runs, so we exit the loop on the
	// terminal notification rather than waiting for a close.
	frames := 0
	totalA := 0.0
	totalB := 0.0
	for n := range watcher {
		if n.Finished != nil {
			fmt.Printf("Run %v\n", n.Finished.State)
			break
		}
		switch {
		case n.Pair != nil:
			frames++
			totalA += n.Pair.InferenceAMS
			totalB += n.Pair.InferenceBMS
			fmt.Printf("Frame %v: %v=%v detections (%.1f ms), %v=%v detections (%.1f ms)\n",
				n.Pair.Index,
				*modelA, len(n.Pair.DetectionsA), n.Pair.InferenceAMS,
				*modelB, len(n.Pair.DetectionsB), n.Pair.InferenceBMS)
		case n.Throughput != nil:
			fmt.Printf("FPS: %v=%.1f, %v=%.1f\n", *modelA, n.Throughput.FPSA, *modelB, n.Throughput.FPSB)
		case n.Progress != nil:
			fmt.Printf("Progress: %v/%v\n", n.Progress.Done, n.Progress.Total)
		case n.Error != nil:
			fmt.Fprintf(os.Stderr, "Error: %v\n", n.Error.Err)
		}
	}
	ctrl.Wait()

	if frames > 0 {
		fmt.Printf("\nSummary over %v frames:\n", frames)
		fmt.Printf("  %v: avg %.1f ms/frame\n", *modelA, totalA/float64(frames))
		fmt.Printf("  %v: avg %.1f ms/frame\n", *modelB, totalB/float64(frames))
	}
}
