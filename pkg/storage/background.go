package storage

import (
	"time"

	"go.uber.org/zap"
)

// StartBackgroundWorkers starts the periodic snapshot saver
func (se *Engine) StartBackgroundWorkers() {
	if !se.backgroundSave || se.dataFile == "" {
		return
	}

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := se.saveIfDirty(); err != nil {
					se.logger.Error("background save failed",
						zap.String("file", se.dataFile), zap.Error(err))
				}
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers; safe to call more than once
func (se *Engine) StopBackgroundWorkers() {
	se.stopOnce.Do(func() {
		close(se.stopChan)
	})
	se.backgroundWg.Wait()
}
