// Command meshdump generates terrain, meshes it on the worker pool and
// harvests the results frame by frame the way a renderer would. It logs
// per-cluster statistics and can write the published vertex streams to a
// zstd-compressed dump.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"mini-mc-polygen/internal/config"
	"mini-mc-polygen/internal/meshing"
	"mini-mc-polygen/internal/profiling"
	"mini-mc-polygen/internal/registry"
	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to mesh settings yaml (optional)")
		blocksPath = flag.String("blocks", "", "path to block registry yaml (optional)")
		radius     = flag.Int("radius", 2, "chunk radius to generate around the origin")
		seed       = flag.Int64("seed", 1337, "terrain seed")
		seaLevel   = flag.Int("sea_level", -1, "water level in blocks (-1 derives it from the world height)")
		caves      = flag.Bool("caves", true, "carve caves")
		frames     = flag.Int("frames", 600, "maximum number of frames to simulate")
		frameTime  = flag.Duration("frame_time", 16*time.Millisecond, "simulated frame duration")
		out        = flag.String("out", "", "write published meshes to this .zst file")
		verbose    = flag.Bool("v", false, "log every cluster")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[meshdump] ", log.LstdFlags|log.Lmsgprefix)

	settings := config.DefaultMeshSettings()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		settings = s
	}
	if err := config.SetMeshSettings(settings); err != nil {
		logger.Fatalf("settings: %v", err)
	}
	config.SetSeaLevel(*seaLevel)
	config.SetCaves(*caves)

	blocks := registry.Default()
	if *blocksPath != "" {
		r, err := registry.LoadYAML(*blocksPath)
		if err != nil {
			logger.Fatalf("load blocks: %v", err)
		}
		blocks = r
	}
	if blocks.IconsPerRow() != settings.IconsPerRow {
		logger.Printf("registry atlas is %d icons wide, settings say %d; using the registry", blocks.IconsPerRow(), settings.IconsPerRow)
	}

	w := world.NewSized(settings.ClusterSize, settings.ClustersPerChunk)
	gen := world.NewGenerator(*seed, w.Height())
	if lvl := config.GetSeaLevel(); lvl >= 0 {
		gen.SeaLevel = lvl
	}
	if !config.GetCaves() {
		gen.CaveThreshold = 0
	}
	added := w.Populate(gen, 0, 0, *radius)
	logger.Printf("generated %d chunks (%d clusters each, edge %d)", added, w.ClustersPerChunk(), w.ClusterSize())

	spawn := mgl32.Vec3{0.5, float32(gen.HeightAt(0, 0)) + 1.6, 0.5}
	arena := vbo.NewArena(64)
	opts := meshing.OptionsFromSettings(settings)
	opts.IconsPerRow = blocks.IconsPerRow()
	opts.Logger = log.New(os.Stderr, "[meshing] ", log.LstdFlags|log.Lmsgprefix)
	if *verbose {
		opts.Debug = func(format string, args ...any) { opts.Logger.Printf(format, args...) }
	}
	mesher := meshing.NewGenerator(w, blocks, arena, meshing.ViewerFunc(func() mgl32.Vec3 { return spawn }), opts)
	sched := meshing.NewScheduler(mesher, config.GetMeshSettings().Workers, settings.QueueSize)

	frame := runFrames(w, mesher, sched, *frames, *frameTime)
	sched.Shutdown()
	logger.Printf("settled after %d frames", frame)

	report(logger, w, *verbose)
	st := mesher.Stats()
	logger.Printf("meshed %d clusters, %d faces, %d updates applied, %d discarded, %d harvests skipped",
		st.ClustersMeshed, st.FacesEmitted, st.UpdatesApplied, st.UpdatesDiscarded, st.HarvestsSkipped)
	as := arena.Stats()
	logger.Printf("arena: %d live blocks, %d live bytes, %d cached bytes, %d allocs, %d reuses",
		as.LiveBlocks, as.LiveBytes, as.CachedBytes, as.Allocs, as.Reuses)
	logger.Printf("timings: %s", profiling.TopN(5))

	if *out != "" {
		n, err := writeDump(*out, w)
		if err != nil {
			logger.Fatalf("write dump: %v", err)
		}
		logger.Printf("wrote %d clusters to %s", n, *out)
	}

	for _, ch := range w.Chunks() {
		mesher.ReleaseChunk(ch)
	}
	mesher.Close()
}

// runFrames schedules dirty chunks and harvests once per frame until nothing
// is dirty, queued or pending. Returns the number of frames simulated.
func runFrames(w *world.World, mesher *meshing.Generator, sched *meshing.Scheduler, maxFrames int, frameTime time.Duration) int {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	frame := 0
	for frame < maxFrames {
		profiling.ResetFrame()
		frame++
		sched.ScheduleDirty(w)
		mesher.Harvest()
		if sched.QueueLength() == 0 && mesher.Pending() == 0 && len(w.DirtyChunks()) == 0 {
			break
		}
		<-ticker.C
	}
	return frame
}

func report(logger *log.Logger, w *world.World, verbose bool) {
	var clusters, empty, vertices, transparent int
	for _, ch := range w.Chunks() {
		for _, cl := range ch.Clusters {
			clusters++
			if cl.Vertices == 0 && cl.TransparentVertices == 0 {
				empty++
			}
			vertices += cl.Vertices
			transparent += cl.TransparentVertices
			if verbose {
				logger.Printf("chunk (%d,%d) cluster %d: %d opaque, %d transparent vertices, see-through %#04x",
					ch.X, ch.Z, cl.Y, cl.Vertices, cl.TransparentVertices, uint16(cl.SeeThrough))
			}
		}
	}
	logger.Printf("%d clusters (%d empty), %d opaque and %d transparent vertices", clusters, empty, vertices, transparent)
}
