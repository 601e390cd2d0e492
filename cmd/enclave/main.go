// Command enclave dials a host's rendezvous listener for one ring pair,
// attaches the named shared-memory segments, and runs a single-task
// scheduler over a selected network-function pipeline until the host
// publishes STOP.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/saferun-io/tee-fabric/examples/aclfw"
	"github.com/saferun-io/tee-fabric/examples/ipseccrypto"
	"github.com/saferun-io/tee-fabric/examples/macswap"
	"github.com/saferun-io/tee-fabric/examples/maglev"
	"github.com/saferun-io/tee-fabric/examples/monitoring"
	"github.com/saferun-io/tee-fabric/examples/nattcp"

	"github.com/saferun-io/tee-fabric/internal/affinity"
	"github.com/saferun-io/tee-fabric/internal/config"
	"github.com/saferun-io/tee-fabric/internal/packet"
	"github.com/saferun-io/tee-fabric/internal/port"
	"github.com/saferun-io/tee-fabric/internal/rendezvous"
	"github.com/saferun-io/tee-fabric/internal/ring"
	"github.com/saferun-io/tee-fabric/internal/runctl"
	"github.com/saferun-io/tee-fabric/internal/scheduler"
	"github.com/saferun-io/tee-fabric/internal/shm"
	"github.com/saferun-io/tee-fabric/internal/telemetry"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config overlay")
	pipelineName := pflag.String("pipeline", "macswap", "pipeline to run: macswap, aclfw, nattcp, maglev, monitoring, ipsec-encrypt, ipsec-decrypt")
	core := pflag.Int("core", -1, "core to pin this enclave's scheduler loop to (-1 disables pinning)")
	natIP := pflag.String("nat-ip", "10.0.0.1", "public address the nattcp pipeline rewrites outbound source addresses to")
	pflag.Parse()

	log := telemetry.NewLogger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("enclave: loading config")
	}

	pair, err := rendezvous.Dial(cfg.RendezvousAddr)
	if err != nil {
		log.WithError(err).Fatal("enclave: rendezvous dial")
	}
	log.WithFields(map[string]interface{}{"recvq": pair.RecvqName, "sendq": pair.SendqName}).
		Info("enclave: attached ring pair")

	recvq, sendq, err := attachRingPair(pair)
	if err != nil {
		log.WithError(err).Fatal("enclave: attaching rings")
	}

	pool := packet.NewPool(cfg.PoolSize, packet.DefaultCapacity, 128)
	q := port.NewSimQueue(0, recvq, sendq)

	pipeline, err := buildPipeline(*pipelineName, pool, q, *natIP)
	if err != nil {
		log.WithError(err).Fatal("enclave: building pipeline")
	}

	task := scheduler.NewTask(q, pool, pipeline)
	sched := scheduler.New(task)

	group := runctl.NewGroup(context.Background())
	group.WatchSignals(func() {
		log.Info("enclave: shutdown signal received")
		sched.Stop()
	})
	group.Go(func(ctx context.Context) error {
		if *core >= 0 {
			if err := affinity.Pin(*core); err != nil {
				log.WithError(err).Warn("enclave: core pinning unavailable")
			}
		}
		go func() {
			<-ctx.Done()
			sched.Stop()
		}()
		go func() {
			for !q.Stopped() {
				time.Sleep(time.Millisecond)
			}
			log.Info("enclave: recvq stopped by host")
			sched.Stop()
		}()
		err := sched.Run()
		group.Cancel()
		return err
	})

	if err := group.Wait(); err != nil {
		log.WithError(err).Error("enclave: scheduler exited with error")
		os.Exit(1)
	}
}

func attachRingPair(pair rendezvous.Pair) (*ring.Ring, *ring.Ring, error) {
	recvSeg, err := shm.Posix{}.Attach(pair.RecvqName)
	if err != nil {
		return nil, nil, err
	}
	sendSeg, err := shm.Posix{}.Attach(pair.SendqName)
	if err != nil {
		return nil, nil, err
	}
	return ring.New(ring.NewLayout(recvSeg.Words())), ring.New(ring.NewLayout(sendSeg.Words())), nil
}

func buildPipeline(name string, pool *packet.Pool, q port.Queue, natIP string) (scheduler.Stage, error) {
	switch name {
	case "macswap":
		return macswap.New(pool, q), nil
	case "aclfw":
		return aclfw.New(aclfw.NewFirewall(aclfw.DefaultRules()), q), nil
	case "nattcp":
		return nattcp.New(nattcp.NewTable(net.ParseIP(natIP)), q), nil
	case "maglev":
		lut := maglev.New([]string{"backend-a", "backend-b", "backend-c"})
		backends := []net.IP{
			net.ParseIP("10.0.1.1"),
			net.ParseIP("10.0.1.2"),
			net.ParseIP("10.0.1.3"),
		}
		return maglev.NewPipeline(lut, backends, q), nil
	case "monitoring":
		return monitoring.New(monitoring.NewCounters(), q), nil
	case "ipsec-encrypt":
		codec, err := ipseccrypto.NewCodec(defaultKey())
		if err != nil {
			return nil, err
		}
		return ipseccrypto.NewEncryptPipeline(codec, q), nil
	case "ipsec-decrypt":
		codec, err := ipseccrypto.NewCodec(defaultKey())
		if err != nil {
			return nil, err
		}
		return ipseccrypto.NewDecryptPipeline(codec, q), nil
	default:
		return nil, fmt.Errorf("enclave: unknown pipeline %q", name)
	}
}

func defaultKey() []byte {
	return []byte("\x92\x65\x49\x29\x1f\x40\x1a\xcc\x98\x00\x77\x69\x13\xfd\xc0\x11")
}
