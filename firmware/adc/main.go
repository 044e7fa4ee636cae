//go:build tinygo

//go:generate tinygo flash -target=esp32c3-generic -ldflags="-X main.mode=ecg"

// ADC streams channel 1 over serial in a plotter friendly format. In ecg
// mode it also plays the recorded ECG on the DAC and samples it back.
package main

import (
	"context"
	"time"

	"machine"

	"github.com/itohio/esplab/firmware/board"
	"github.com/itohio/esplab/pkg/analog"
	"github.com/itohio/esplab/pkg/notify"
	"github.com/itohio/esplab/pkg/timer"
)

// mode is "stream" or "ecg", set at link time.
var mode = "stream"

func main() {
	ctx := context.Background()
	board.ConfigureSerial()

	sampler := analog.NewSampler(board.NewADC(board.PIN_ADC_CH1), board.Serial, ">adcCH1:")
	rate := uint32(analog.SamplerRateHz)

	if mode == "ecg" {
		rate = analog.ADCRateHz
		dac, err := board.NewDAC(machine.PWM0, board.PIN_DAC_OUT)
		if err != nil {
			fail(err)
		}
		player, err := analog.NewPlayer(dac, analog.ECG)
		if err != nil {
			fail(err)
		}
		start(ctx, "dac", analog.DACRateHz, player.Step)
	}

	start(ctx, "adc", rate, sampler.Sample)
	select {}
}

// start runs work on its own task, woken by a timer at hz.
func start(ctx context.Context, name string, hz uint32, work notify.Work) {
	task := notify.NewTask(name, work)
	t, err := timer.New(timer.FromHz(hz), func() { task.Notify() })
	if err != nil {
		fail(err)
	}
	go task.Run(ctx)
	t.Start(ctx)
}

func fail(err error) {
	for {
		println("adc:", err.Error())
		time.Sleep(time.Second)
	}
}
