package telem

import (
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends everything in the default registry to a Prometheus pushgateway. jobdb exits
// as soon as the migration finishes, long before anything could scrape it, so this is
// the only way its metrics reach Prometheus.
func Push(logger kitlog.Logger, url, job, instance string) error {
	logger.Log("event", "metrics.push", "url", url, "job", job, "instance", instance)
	err := push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("instance", instance).
		Push()

	return errors.Wrap(err, "failed to push metrics")
}
