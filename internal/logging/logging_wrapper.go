package logging

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

func LoggingWrapper(
	loggingName string,
	log *logrus.Logger,
	handler func(http.ResponseWriter, *http.Request, *LogData) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logData := NewLogData(log)
		log.Debugf("Handler.%v.Start", loggingName)

		endTimer := logData.AddTiming("duration")
		err := handler(w, req.WithContext(WithLogData(req.Context(), logData)), logData)
		endTimer()
		if err != nil {
			logData.Log().WithError(err).Errorf("Handler.%v.Error", loggingName)
			return
		}

		logData.Log().Infof("Handler.%v.Complete", loggingName)
	}
}

// HumaMiddleware gives every huma operation its own LogData and emits it once
// the operation has written its response.
func HumaMiddleware(log *logrus.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		loggingName := ctx.Operation().OperationID
		logData := NewLogData(log)
		logData.AddData("method", ctx.Method())
		logData.AddData("path", ctx.URL().Path)

		endTimer := logData.AddTiming("duration")
		next(huma.WithContext(ctx, WithLogData(ctx.Context(), logData)))
		endTimer()

		status := ctx.Status()
		logData.AddData("status", status)
		switch {
		case status >= http.StatusInternalServerError:
			logData.Log().Errorf("Handler.%v.Error", loggingName)
		case status >= http.StatusBadRequest:
			logData.Log().Warnf("Handler.%v.Rejected", loggingName)
		default:
			logData.Log().Infof("Handler.%v.Complete", loggingName)
		}
	}
}
