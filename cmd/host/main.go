// Command host is the process that owns the NIC: it maps one shared-memory
// ring pair per configured RX/TX queue, advertises the ring names to the
// enclave that rendezvous-connects for each, and busy-polls NIC<->ring
// traffic until signaled to stop.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/saferun-io/tee-fabric/internal/affinity"
	"github.com/saferun-io/tee-fabric/internal/config"
	"github.com/saferun-io/tee-fabric/internal/forwarder"
	"github.com/saferun-io/tee-fabric/internal/ids"
	"github.com/saferun-io/tee-fabric/internal/port"
	"github.com/saferun-io/tee-fabric/internal/rendezvous"
	"github.com/saferun-io/tee-fabric/internal/ring"
	"github.com/saferun-io/tee-fabric/internal/runctl"
	"github.com/saferun-io/tee-fabric/internal/shm"
	"github.com/saferun-io/tee-fabric/internal/telemetry"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config overlay")
	metricsAddr := pflag.String("metrics-addr", "", "address to serve /metrics on (empty disables)")
	slotCount := pflag.Int("ring-slots", 1024, "slot count for each ring (must be a power of two)")
	duration := pflag.Int("duration", 0, "seconds to run before shutting down (0 runs until signaled)")
	pflag.Parse()

	log := telemetry.NewLogger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("host: loading config")
	}

	enclaves := 0
	for _, p := range cfg.Ports {
		enclaves += len(p.RxQueues)
	}
	avail, err := affinity.Available()
	if err != nil {
		log.WithError(err).Fatal("host: counting cores")
	}
	if required := cfg.RequiredCores(enclaves); avail < required {
		log.WithFields(map[string]interface{}{"available": avail, "required": required}).
			Fatal("host: not enough cores")
	}

	metrics := telemetry.NewRegistry()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Warn("host: metrics server exited")
			}
		}()
	}

	rv, err := rendezvous.Listen(cfg.RendezvousAddr)
	if err != nil {
		log.WithError(err).Fatal("host: rendezvous listen")
	}
	defer rv.Close()
	log.WithField("addr", rv.Addr().String()).Info("host: rendezvous listening")

	ctx := context.Background()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*duration)*time.Second)
		defer cancel()
	}
	group := runctl.NewGroup(ctx)
	group.WatchSignals(func() {
		log.Info("host: shutdown signal received")
	})

	for _, p := range cfg.Ports {
		for _, queueIdx := range p.RxQueues {
			p, queueIdx := p, queueIdx
			queueID := ids.NewRunID()
			recvqName := ids.RecvqName(queueID)
			sendqName := ids.SendqName(queueID)

			recvq, sendq, err := createRingPair(recvqName, sendqName, *slotCount)
			if err != nil {
				log.WithError(err).Fatal("host: creating ring pair")
			}

			pair := rendezvous.Pair{RecvqName: recvqName, SendqName: sendqName}
			group.Go(func(ctx context.Context) error {
				log.WithFields(map[string]interface{}{"port": p.Name, "queue": queueIdx}).
					Info("host: waiting for enclave rendezvous")
				if err := rv.Accept(pair); err != nil {
					return err
				}
				driver := &port.LoopbackDriver{}
				nic := port.NewNICQueue(queueIdx, driver)
				loop := forwarder.New(p.Name, nic, recvq, sendq, queueIdx)
				loop.Log = log
				loop.Metrics = metrics
				return loop.Run(ctx)
			})
		}
	}

	if err := group.Wait(); err != nil {
		log.WithError(err).Error("host: forwarder exited with error")
		os.Exit(1)
	}
}

func createRingPair(recvqName, sendqName string, slotCount int) (*ring.Ring, *ring.Ring, error) {
	recvSeg, err := shm.Posix{}.Create(recvqName, slotCount)
	if err != nil {
		return nil, nil, err
	}
	sendSeg, err := shm.Posix{}.Create(sendqName, slotCount)
	if err != nil {
		return nil, nil, err
	}
	recvq := ring.New(ring.NewLayout(recvSeg.Words()))
	if err := recvq.Init(slotCount); err != nil {
		return nil, nil, err
	}
	sendq := ring.New(ring.NewLayout(sendSeg.Words()))
	if err := sendq.Init(slotCount); err != nil {
		return nil, nil, err
	}
	return recvq, sendq, nil
}
