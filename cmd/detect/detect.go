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
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/export"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/imagex"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nnload"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/runner"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sourceSpec(input string, camera int) (source.Spec, error) {
	if camera >= 0 {
		return source.Spec{Mode: source.ModeCamera, Camera: camera}, nil
	}
	if input == "" {
		return source.Spec{}, fmt.Errorf("either --input or --camera is required")
	}
	st, err := os.Stat(input)
	if err != nil {
		return source.Spec{}, err
	}
	if st.IsDir() {
		return source.Spec{Mode: source.ModeFolder, Path: input}, nil
	}
	if source.IsImageFile(input) {
		return source.Spec{Mode: source.ModeImage, Path: input}, nil
	}
	return source.Spec{Mode: source.ModeVideo, Path: input}, nil
}

func main() {
	cfg, err := config.Load()
	check(err)

	parser := argparse.NewParser("detect", "Run a YOLO model over an image, folder, video, or camera source")
	input := parser.String("i", "input", &argparse.Options{Help: "Input image, folder, or video file"})
	camera := parser.Int("c", "camera", &argparse.Options{Help: "Camera index (webcam source)", Default: -1})
	model := parser.String("m", "model", &argparse.Options{Help: "Model name", Default: nnload.DefaultModelName})
	conf := parser.Float("", "conf", &argparse.Options{Help: "Confidence threshold", Default: float64(cfg.Confidence)})
	iou := parser.Float("", "iou", &argparse.Options{Help: "NMS IOU threshold", Default: float64(cfg.IOU)})
	delay := parser.Int("", "delay", &argparse.Options{Help: "Per-frame delay in milliseconds", Default: cfg.DelayMS})
	preview := parser.Flag("", "preview", &argparse.Options{Help: "Camera preview without inference"})
	save := parser.Flag("s", "save", &argparse.Options{Help: "Save annotated results"})
	jsonFrame := parser.String("", "json-frame", &argparse.Options{Help: "Write single-image detections as JSON to this path"})
	jsonPath := parser.String("", "json", &argparse.Options{Help: "Export sessions as JSON to this path"})
	csvPath := parser.String("", "csv", &argparse.Options{Help: "Export session summaries as CSV to this path"})
	listModels := parser.Flag("", "list-models", &argparse.Options{Help: "List available models and exit"})
	listCameras := parser.Flag("", "list-cameras", &argparse.Options{Help: "List available camera indices and exit"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	if *listModels {
		for _, name := range nnload.ListModels(cfg.ModelsDir) {
			fmt.Println(name)
		}
		return
	}
	if *listCameras {
		for _, index := range source.ListCameras(10) {
			fmt.Println(index)
		}
		return
	}

	spec, err := sourceSpec(*input, *camera)
	check(err)

	runCfg := runner.NewConfig(*model, spec)
	runCfg.ModelsDir = cfg.ModelsDir
	runCfg.OutputDir = cfg.ResultsDir
	runCfg.Confidence = float32(*conf)
	runCfg.IOU = float32(*iou)
	runCfg.DelayMS = *delay
	runCfg.FPSWindow = cfg.FPSWindow
	runCfg.LineWidth = 2
	if *preview {
		runCfg.InferenceEnabled = false
	}

	ctrl := detector.NewController(logger)
	watcher := ctrl.AddWatcher()
	check(ctrl.StartRun(runCfg))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Infof("Interrupted, stopping")
		ctrl.Stop()
	}()

	// Watcher channels stay open across runs, so we exit the loop on the
	// terminal notification rather than waiting for a close.
	batch := []export.BatchItem{}
	for n := range watcher {
		if n.Finished != nil {
			fmt.Printf("Run %v\n", n.Finished.State)
			break
		}
		switch {
		case n.Frame != nil:
			fmt.Printf("Frame %v: %v detections (%.1f ms)\n", n.Frame.Index, len(n.Frame.Detections), n.Frame.InferenceMS)
			for _, det := range n.Frame.Detections {
				fmt.Printf("  %v: %.2f\n", det.ClassName, det.Confidence)
			}
			if *save {
				switch spec.Mode {
				case source.ModeFolder:
					// The frame image is only valid until the next notification.
					batch = append(batch, export.BatchItem{Path: n.Frame.Path, Image: imagex.Clone(n.Frame.Image), Detections: n.Frame.Detections})
				case source.ModeImage:
					path, err := export.SaveFrame(n.Frame.Image, n.Frame.Detections, cfg.ResultsDir, runCfg.LineWidth)
					check(err)
					fmt.Printf("Saved %v\n", path)
				}
			}
			if *jsonFrame != "" && spec.Mode == source.ModeImage {
				check(export.SaveFrameJSON(n.Frame.Detections, *jsonFrame))
				fmt.Printf("Saved %v\n", *jsonFrame)
			}
		case n.Progress != nil:
			fmt.Printf("Progress: %v/%v\n", n.Progress.Done, n.Progress.Total)
		case n.Error != nil:
			fmt.Fprintf(os.Stderr, "Error: %v\n", n.Error.Err)
		}
	}
	ctrl.Wait()

	if *save && len(batch) > 0 {
		dir, err := export.SaveBatch(batch, cfg.ResultsDir, runCfg.LineWidth)
		check(err)
		fmt.Printf("Batch results saved to %v\n", dir)
	}

	store := ctrl.Store()
	if sessions := store.Sessions(); len(sessions) > 0 {
		stats := sessions[len(sessions)-1].Stats()
		fmt.Printf("Session %v: %v frames, %v detections, avg confidence %.2f\n",
			sessions[len(sessions)-1].ID, stats.TotalFrames, stats.TotalDetections, stats.AvgConfidence)
	}
	if *jsonPath != "" {
		check(store.ExportJSON(*jsonPath))
	}
	if *csvPath != "" {
		check(store.ExportCSV(*csvPath))
	}
}
