package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	// codec layer
	"github.com/movsoftware/silkio/decoders/silk"

	// various formatters
	"github.com/movsoftware/silkio/format"
	_ "github.com/movsoftware/silkio/format/binary"
	_ "github.com/movsoftware/silkio/format/json"
	_ "github.com/movsoftware/silkio/format/text"

	// various transports
	"github.com/movsoftware/silkio/transport"
	_ "github.com/movsoftware/silkio/transport/file"
	_ "github.com/movsoftware/silkio/transport/kafka"

	// core libraries
	"github.com/movsoftware/silkio/metrics"
	"github.com/movsoftware/silkio/site"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "rwexport " + version + " " + buildinfos

	InFile     = flag.String("in", "", "Packed input file (empty for stdin)")
	InType     = flag.String("in.type", "ipv6routing", "Input record format")
	InVersion  = flag.Int("in.version", 0, "Input record version (0 for the format default)")
	InSwap     = flag.Bool("in.swap", false, "Input stream uses the opposite byte order")
	InHour     = flag.String("in.hour", "", fmt.Sprintf("Hour the input stream covers (%s, UTC, empty for the current hour)", hourLayout))
	InSensor   = flag.String("in.sensor", "0", "Sensor for layouts that do not carry one per record (name with -site, else numeric)")
	InFlowType = flag.String("in.flowtype", "0", "Flow type for layouts that do not carry one per record (name with -site, else numeric)")

	SiteFile = flag.String("site", "", "Site configuration file for sensor and flow type names")

	LogLevel = flag.String("loglevel", "info", "Log level")
	LogFmt   = flag.String("logfmt", "normal", "Log formatter")

	Format    = flag.String("format", "text", fmt.Sprintf("Choose the format (available: %s)", strings.Join(format.GetFormats(), ", ")))
	Transport = flag.String("transport", "file", fmt.Sprintf("Choose the transport (available: %s)", strings.Join(transport.GetTransports(), ", ")))

	MetricsAddr = flag.String("metrics.addr", "", "Prometheus metrics HTTP address (empty to disable)")

	Version = flag.Bool("v", false, "Print version")
)

const hourLayout = "2006/01/02T15"

func resolveSensor(cfg *site.Config, name string) (uint16, error) {
	if cfg != nil {
		if id, ok := cfg.SensorID(name); ok {
			return id, nil
		}
	}
	id, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown sensor %q", name)
	}
	return uint16(id), nil
}

func resolveFlowType(cfg *site.Config, name string) (uint8, error) {
	if cfg != nil {
		if id, ok := cfg.FlowTypeID(name); ok {
			return id, nil
		}
	}
	id, err := strconv.ParseUint(name, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown flow type %q", name)
	}
	return uint8(id), nil
}

func main() {
	flag.Parse()

	if *Version {
		fmt.Println(AppVersion)
		os.Exit(0)
	}

	lvl, err := log.ParseLevel(*LogLevel)
	if err != nil {
		log.Fatal("error parsing log level")
	}
	log.SetLevel(lvl)
	if *LogFmt == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	var siteCfg *site.Config
	if *SiteFile != "" {
		siteCfg, err = site.Load(*SiteFile)
		if err != nil {
			log.WithError(err).Fatal("error loading site configuration")
		}
	}

	sensor, err := resolveSensor(siteCfg, *InSensor)
	if err != nil {
		log.WithError(err).Fatal("error resolving sensor")
	}
	flowType, err := resolveFlowType(siteCfg, *InFlowType)
	if err != nil {
		log.WithError(err).Fatal("error resolving flow type")
	}

	hour := time.Now().UTC().Truncate(time.Hour)
	if *InHour != "" {
		hour, err = time.ParseInLocation(hourLayout, *InHour, time.UTC)
		if err != nil {
			log.WithError(err).Fatal("error parsing hour")
		}
	}

	id, err := silk.ParseFormatID(*InType)
	if err != nil {
		log.WithError(err).Fatal("error resolving input format")
	}
	vers := silk.Version(*InVersion)
	if vers == silk.VersionAny {
		f, ok := silk.DefaultRegistry().Lookup(id)
		if !ok {
			log.WithField("format", id.String()).Fatal("format not registered")
		}
		vers = f.DefaultVersion
	}
	codec, err := silk.DefaultRegistry().Prepare(id, vers, silk.Read, 0)
	if err != nil {
		log.WithError(err).Fatal("error preparing codec")
	}
	wrapped := metrics.WrapCodec(codec)

	formatter, err := format.FindFormat(*Format)
	if err != nil {
		log.WithError(err).Fatal("error formatter")
	}

	transporter, err := transport.FindTransport(*Transport)
	if err != nil {
		log.WithError(err).Fatal("error transporter")
	}

	if *MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*MetricsAddr, nil); err != nil {
				log.WithError(err).Fatal("error starting metrics HTTP server")
			}
		}()
	}

	var in io.Reader = os.Stdin
	if *InFile != "" {
		f, err := os.Open(*InFile)
		if err != nil {
			log.WithError(err).Fatal("error opening input")
		}
		defer f.Close()
		in = f
	}

	log.WithFields(log.Fields{
		"format":  id.String(),
		"version": vers,
		"reclen":  wrapped.RecLen(),
	}).Info("starting export")

	ctx := &silk.StreamContext{
		NeedsSwap:       *InSwap,
		HeaderStartTime: hour.UnixMilli(),
		Sensor:          sensor,
		FlowType:        flowType,
		Mode:            silk.Read,
	}
	buf := make([]byte, wrapped.RecLen())
	var rec silk.Record
	var count, errCount uint64

	for {
		if _, err := io.ReadFull(in, buf); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				log.Error("truncated record at end of input")
				errCount++
				break
			}
			log.WithError(err).Fatal("error reading input")
		}

		if err := wrapped.Unpack(ctx, &rec, buf); err != nil {
			log.WithError(err).Error("error unpacking record")
			errCount++
			continue
		}

		key, data, err := formatter.Format(&rec)
		if err != nil {
			log.WithError(err).Error("error formatting record")
			errCount++
			continue
		}

		if err := transporter.Send(key, data); err != nil {
			log.WithError(err).Error("error sending record")
			errCount++
		}
		count++
	}

	if err := transporter.Close(); err != nil {
		log.WithError(err).Error("error closing transporter")
	}

	log.WithFields(log.Fields{
		"records": count,
		"errors":  errCount,
	}).Info("export finished")
}
