// rwgen writes a packed flow-record file filled with synthetic
// traffic. It exists to produce test inputs for rwexport.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/movsoftware/silkio/decoders/silk"

	log "github.com/sirupsen/logrus"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "rwgen " + version + " " + buildinfos

	OutFile     = flag.String("out", "", "Output file (empty for stdout)")
	OutType     = flag.String("out.type", "ipv6routing", "Record format to pack")
	OutVersion  = flag.Int("out.version", 0, "Record version to pack (0 for the format default)")
	OutSwap     = flag.Bool("out.swap", false, "Write the stream in the opposite byte order")
	OutHour     = flag.String("out.hour", "", fmt.Sprintf("Hour the stream covers (%s, UTC, empty for the current hour)", hourLayout))
	OutSensor   = flag.Uint("out.sensor", 0, "Sensor to stamp on every record")
	OutFlowType = flag.Uint("out.flowtype", 0, "Flow type to stamp on every record")

	Count = flag.Int("count", 1000, "Number of records to generate")
	Seed  = flag.Int64("seed", 1, "Random seed, same seed gives same stream")

	LogLevel = flag.String("loglevel", "info", "Log level")

	Version = flag.Bool("v", false, "Print version")
)

const hourLayout = "2006/01/02T15"

var webPorts = []uint16{80, 443, 8080}

// fillRecord populates r with one synthetic flow inside the hour. Web
// formats only accept TCP, so those streams are all TCP to a web port.
func fillRecord(rng *rand.Rand, r *silk.Record, id silk.FormatID, hour int64) {
	r.Clear()

	elapsed := uint32(rng.Intn(120000))
	r.SetStartTime(hour + int64(rng.Intn(3600000-int(elapsed))))
	r.SetElapsed(elapsed)

	pkts := uint32(1 + rng.Intn(2000))
	r.SetPkts(pkts)
	r.SetBytes(pkts * uint32(40+rng.Intn(1400)))

	r.SetSIPv4(0x0a000000 | rng.Uint32()&0x00ffffff)
	r.SetDIPv4(0xc0a80000 | rng.Uint32()&0x0000ffff)

	if id == silk.FormatAugWeb {
		r.SetProto(silk.IPProtoTCP)
		r.SetSPort(uint16(1024 + rng.Intn(64000)))
		r.SetDPort(webPorts[rng.Intn(len(webPorts))])
	} else {
		switch rng.Intn(3) {
		case 0:
			r.SetProto(17)
		case 1:
			r.SetProto(1)
		default:
			r.SetProto(silk.IPProtoTCP)
		}
		r.SetSPort(uint16(rng.Intn(65536)))
		r.SetDPort(uint16(rng.Intn(65536)))
	}
	if r.Proto() == silk.IPProtoTCP {
		r.SetFlags(uint8(rng.Intn(64)))
	}

	r.SetInput(uint16(rng.Intn(16)))
	r.SetOutput(uint16(rng.Intn(16)))
	r.SetApplication(r.DPort())
	r.SetSensor(uint16(*OutSensor))
	r.SetFlowType(uint8(*OutFlowType))
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

	hour := time.Now().UTC().Truncate(time.Hour)
	if *OutHour != "" {
		hour, err = time.ParseInLocation(hourLayout, *OutHour, time.UTC)
		if err != nil {
			log.WithError(err).Fatal("error parsing hour")
		}
	}

	id, err := silk.ParseFormatID(*OutType)
	if err != nil {
		log.WithError(err).Fatal("error resolving format")
	}
	codec, err := silk.DefaultRegistry().Prepare(id, silk.Version(*OutVersion), silk.Write, 0)
	if err != nil {
		log.WithError(err).Fatal("error preparing codec")
	}

	out := os.Stdout
	if *OutFile != "" {
		out, err = os.Create(*OutFile)
		if err != nil {
			log.WithError(err).Fatal("error creating output")
		}
		defer out.Close()
	}
	w := bufio.NewWriter(out)

	ctx := &silk.StreamContext{
		NeedsSwap:       *OutSwap,
		HeaderStartTime: hour.UnixMilli(),
		Sensor:          uint16(*OutSensor),
		FlowType:        uint8(*OutFlowType),
		Mode:            silk.Write,
	}

	rng := rand.New(rand.NewSource(*Seed))
	buf := make([]byte, codec.RecLen)
	var rec silk.Record

	for i := 0; i < *Count; i++ {
		fillRecord(rng, &rec, id, hour.UnixMilli())
		if err := codec.Pack(ctx, &rec, buf); err != nil {
			log.WithError(err).Fatal("error packing record")
		}
		if _, err := w.Write(buf); err != nil {
			log.WithError(err).Fatal("error writing record")
		}
	}
	if err := w.Flush(); err != nil {
		log.WithError(err).Fatal("error flushing output")
	}

	log.WithFields(log.Fields{
		"format":  codec.Format.String(),
		"version": codec.Version,
		"records": *Count,
	}).Info("generation finished")
}
