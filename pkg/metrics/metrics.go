/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mail metrics, labelled by transport name ("smtp" or "sendmail").
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailcomposer_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"transport"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailcomposer_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"transport"})
	MailAttachments = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailcomposer_mail_attachments_total",
		Help: "Total number of attachments handed to a transport",
	})

	// Template metrics. result is "success" or "error".
	TemplateRenders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailcomposer_template_render_total",
		Help: "Total number of template renders",
	}, []string{"result"})
	TemplateCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailcomposer_template_cache_hits_total",
		Help: "Total number of renders served from the parsed template cache",
	})
)

func init() {
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailAttachments)
	prometheus.MustRegister(TemplateRenders)
	prometheus.MustRegister(TemplateCacheHits)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// WriteTextfile dumps the default registry to path in the text exposition
// format, for collection by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
