package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

// maxTicksPerShot bounds a single shot so a bad configuration cannot spin forever.
const maxTicksPerShot = 200000

var errStuck = errors.New("shot never came to rest")

func main() {
	shots := flag.Int("shots", 80, "maximum number of shots to play")
	speed := flag.Float64("speed", 12, "cue ball speed for every shot")
	verbose := flag.Bool("v", false, "log engine events")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load().GameConfig()
	if err := cfg.Validate(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	engine, err := game.NewEngine(cfg, log)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	pterm.DefaultHeader.WithFullWidth().Println("Snooker simulation")

	results, err := play(engine, cfg, *shots, *speed)
	if err != nil {
		pterm.Warning.Println(err)
	}
	printScoreboard(engine.State(), results)
}

// play runs scripted shots until the match ends or the shot limit is hit.
func play(e *game.Engine, cfg game.Config, shots int, speed float64) ([]game.ShotResult, error) {
	var results []game.ShotResult
	for len(results) < shots {
		st := e.State()
		switch st.Phase {
		case game.PhaseGameOver:
			return results, nil

		case game.PhaseColourSelection:
			p, ok := planNomination(e.Frame())
			if !ok {
				return results, errors.New("no colour left to nominate")
			}
			if err := apply(e, game.Command{Kind: game.CommandNominate, Point: p}); err != nil {
				return results, fmt.Errorf("nominate: %w", err)
			}

		case game.PhaseAwaitingShot:
			p, ok := planShot(e.Frame(), st, cfg, speed)
			if !ok {
				return results, errors.New("no target for the cue ball")
			}
			res, err := shoot(e, p)
			if err != nil {
				return results, fmt.Errorf("shot %d: %w", len(results)+1, err)
			}
			results = append(results, *res)

		default:
			if _, err := e.Step(); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// apply submits cmd and steps once so it takes effect.
func apply(e *game.Engine, cmd game.Command) error {
	done, err := e.Submit(cmd)
	if err != nil {
		return err
	}
	if _, err := e.Step(); err != nil {
		return err
	}
	return (<-done).Err
}

func shoot(e *game.Engine, p game.Vec2) (*game.ShotResult, error) {
	done, err := e.Shoot(p)
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxTicksPerShot; i++ {
		res, err := e.Step()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if out := <-done; out.Err != nil {
				return nil, out.Err
			}
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, errStuck
}

func printScoreboard(st game.MatchState, results []game.ShotResult) {
	data := pterm.TableData{{"Shot", "Player", "First contact", "Pocketed", "Foul", "Points", "Next"}}
	for _, r := range results {
		foul := "-"
		if r.Foul != nil {
			foul = r.Foul.Type
		}
		pocketed := "-"
		if len(r.PocketedBalls) > 0 {
			pocketed = strings.Join(r.PocketedBalls, ", ")
		}
		data = append(data, []string{
			fmt.Sprint(r.Shot),
			st.Players[r.Shooter].Name,
			string(r.FirstContact),
			pocketed,
			foul,
			fmt.Sprint(r.Points),
			st.Players[r.NextPlayer].Name,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}

	pterm.DefaultSection.Println("Score")
	for i, p := range st.Players {
		marker := ""
		if i == st.Current && st.Phase != game.PhaseGameOver {
			marker = " (to play)"
		}
		pterm.Info.Printfln("%s: %d%s", p.Name, p.Score, marker)
	}

	switch {
	case st.Phase != game.PhaseGameOver:
		pterm.Warning.Printfln("Match unfinished after %d shots, %d reds left", st.Shots, st.RedsLeft)
	case st.Draw:
		pterm.Success.Println(game.GameOverMessage + " It's a draw.")
	default:
		pterm.Success.Printfln("%s %s wins.", game.GameOverMessage, st.Winner)
	}
}
