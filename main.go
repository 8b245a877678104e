package main

import (
	"context"
	"flag"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/vincent-vinf/go-jsend"
	"go.uber.org/zap"

	"stereo-shutter/pkg/camera"
	"stereo-shutter/pkg/capture"
	"stereo-shutter/pkg/config"
	"stereo-shutter/pkg/export"
	"stereo-shutter/pkg/ov"
	"stereo-shutter/pkg/schedule"
	"stereo-shutter/pkg/utils"
	imageutil "stereo-shutter/pkg/utils/image"
	"stereo-shutter/pkg/utils/ps"
	"stereo-shutter/pkg/video"
	"stereo-shutter/pkg/webdav"
)

const (
	webDavStart    = "start"
	webDavShutdown = "shutdown"
)

var (
	configPath = flag.String("config", "./stereo-shutter.toml", "config file path")
	port       = flag.Int("port", 9999, "api port")
	webdavPort = flag.Int("webdav-port", 9998, "webdav port")
	armAtBoot  = flag.Bool("arm", false, "arm capture at startup")

	cfg      *config.Config
	queue    *export.Queue
	worker   *export.Worker
	recorder *capture.Recorder
	leftCam  *camera.Device
	dav      *webdav.Webdav

	logger *zap.SugaredLogger
)

func init() {
	logger = utils.GetLogger()
	flag.Parse()
}

func main() {
	defer logger.Sync()
	var err error

	cfg, err = config.Load(*configPath)
	if err != nil {
		logger.Fatal(err)
	}

	if cfg.NTP.Server != "" {
		go func() {
			if err := utils.SyncClock(cfg.NTP.Server); err != nil {
				logger.Warnf("ntp sync failed: %s", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leftCam, err = camera.OpenDevice(ctx, cfg.Left.Device, cfg.Left.Width, cfg.Left.Height, cfg.Left.Pose(), cfg.Left.Intrinsics)
	if err != nil {
		logger.Fatal(err)
	}
	defer leftCam.Close()

	rightCam, err := camera.OpenDevice(ctx, cfg.Right.Device, cfg.Right.Width, cfg.Right.Height, cfg.Right.Pose(), cfg.Right.Intrinsics)
	if err != nil {
		logger.Fatal(err)
	}
	defer rightCam.Close()

	queue = export.NewQueue(cfg.Export.QueueCapacity, cfg.WarnCooldown())
	worker, err = export.NewWorker(queue, cfg.Export.Root, cfg.Export.DrainBudget)
	if err != nil {
		logger.Fatal(err)
	}

	recorder, err = capture.NewRecorder(leftCam, rightCam, queue, capture.Config{
		Interval:        cfg.Interval(),
		IntrinsicsNames: cfg.Probe.Intrinsics,
		TimestampNames:  cfg.Probe.Timestamps,
	})
	if err != nil {
		logger.Fatal(err)
	}
	if *armAtBoot {
		recorder.Arm()
	}

	schedule.New(ctx, recorder, worker, cfg.Tick())

	dav = webdav.New(ctx, *webdavPort, cfg.Export.Root)
	defer dav.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.Cors())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, jsend.SimpleErr("page not found"))
	})

	apiRouter := r.Group("/api")
	apiRouter.GET("/status", getStatus)
	apiRouter.PUT("/record", ctlRecord)
	apiRouter.PUT("/export", ctlExport)
	apiRouter.PUT("/webdav", ctlWebdav)
	apiRouter.GET("/device/realtime/video", realtimeVideo)
	apiRouter.POST("/session/video", buildVideo)

	utils.ListenAndServe(r, *port)
}

func getStatus(c *gin.Context) {
	status := ov.Status{
		Recording:      recorder.Armed(),
		ExportEnabled:  queue.Enabled(),
		ExportedFrames: worker.ExportedFrames(),
		QueuedFrames:   queue.Len(),
		DroppedFrames:  queue.Dropped(),
		BytesWritten:   humanize.Bytes(worker.BytesWritten()),
		SessionDir:     worker.SessionDir(),
	}

	// system stats are best effort
	if cpu, err := ps.CPUStatus(); err == nil {
		status.CPU = cpu
	}
	if m, err := ps.MemoryStatus(); err == nil {
		status.Memory = m
	}
	if d, err := ps.DiskStatus(cfg.Export.Root); err == nil {
		status.Disk = d
	}

	c.JSON(http.StatusOK, jsend.Success(status))
}

func ctlRecord(c *gin.Context) {
	armed, err := strconv.ParseBool(c.Query("armed"))
	if err != nil {
		c.JSON(http.StatusBadRequest, jsend.SimpleErr("armed must be a boolean"))
		return
	}
	if armed {
		recorder.Arm()
	} else {
		recorder.Disarm()
	}

	c.JSON(http.StatusOK, jsend.Success(armed))
}

func ctlExport(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		c.JSON(http.StatusBadRequest, jsend.SimpleErr("enabled must be a boolean"))
		return
	}
	queue.SetEnabled(enabled)

	c.JSON(http.StatusOK, jsend.Success(enabled))
}

func ctlWebdav(c *gin.Context) {
	switch c.Query("op") {
	case webDavStart:
		dav.Start()
		c.JSON(http.StatusOK, jsend.Success(c.Request.Host))
	case webDavShutdown:
		dav.Stop()
		c.JSON(http.StatusOK, jsend.Success(nil))
	default:
		c.JSON(http.StatusBadRequest, jsend.SimpleErr("unknown operation"))
	}
}

func buildVideo(c *gin.Context) {
	session := worker.SessionDir()
	if session == "" {
		c.JSON(http.StatusBadRequest, jsend.SimpleErr("no frames have been exported yet"))
		return
	}

	var req ov.VideoRequest
	if c.Request.ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return
		}
	}

	path, frames, err := video.BuildSession(session, export.LeftImageFile, req.FPS, req.Quality)
	if err != nil {
		c.JSON(http.StatusInternalServerError, jsend.SimpleErr(err.Error()))
		return
	}

	c.JSON(http.StatusOK, jsend.Success(ov.VideoResult{Path: path, Frames: frames}))
}

// realtimeVideo streams the left eye as multipart JPEG until the client
// disconnects.
func realtimeVideo(c *gin.Context) {
	mimeWriter := multipart.NewWriter(c.Writer)
	c.Header("Content-Type", fmt.Sprintf("multipart/x-mixed-replace; boundary=%s", mimeWriter.Boundary()))
	partHeader := make(textproto.MIMEHeader)
	partHeader.Add("Content-Type", "image/jpeg")

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-t.C:
		}

		frame := leftCam.Image()
		if frame == nil {
			continue
		}
		partWriter, err := mimeWriter.CreatePart(partHeader)
		if err != nil {
			logger.Errorf("failed to create multi-part writer: %s", err)
			return
		}
		img := imageutil.DecodeRGB(frame.Pix, frame.Width, frame.Height)
		if err := imageutil.EncodeJPEG(img, partWriter, video.DefaultQuality); err != nil {
			logger.Errorf("failed to write preview frame: %s", err)
			return
		}
	}
}
