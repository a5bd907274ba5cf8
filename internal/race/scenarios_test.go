package race_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

var durations = []float64{2, 5, 60, 300, 1200, 2700, 10800}

func rider(name string, weight, flat, climb, descend, accel float64, powers ...float64) sim.RiderConfig {
	cfg := sim.RiderConfig{
		Name: name, Weight: weight, FlatAbility: flat, ClimbingAbility: climb,
		DescendingAbility: descend, Acceleration: accel,
	}
	for i, p := range powers {
		cfg.Curve = append(cfg.Curve, sim.Anchor{Duration: durations[i], Power: p})
	}
	return cfg
}

func tt(name string) sim.RiderConfig {
	return rider(name, 70, 0.88, 0.2, 0.5, 40, 1200, 1000, 630, 535, 460, 400, 330)
}

func sprinter(name string) sim.RiderConfig {
	return rider(name, 90, 0.78, 0.1, 0.7, 800, 1600, 1440, 690, 456, 384, 320, 300)
}

func hilly() *course.Course {
	segs := []course.Segment{{Length: 20}}
	for range 3 {
		segs = append(segs, course.Segment{Length: 5, Gradient: 0.08}, course.Segment{Length: 20})
	}
	return course.MustNew(segs...)
}

func names(prefix string, n int, build func(string) sim.RiderConfig) []sim.RiderConfig {
	return lo.Times(n, func(i int) sim.RiderConfig { return build(fmt.Sprintf("%s%d", prefix, i+1)) })
}

func pick(m *race.Manager, cfgs []sim.RiderConfig) []*sim.Rider {
	return lo.Map(cfgs, func(c sim.RiderConfig, _ int) *sim.Rider {
		r, err := m.Rider(c.Name)
		Expect(err).NotTo(HaveOccurred())
		return r
	})
}

func meanFinish(rs []*sim.Rider) float64 {
	return lo.SumBy(rs, func(r *sim.Rider) float64 { return r.FinishTime() }) / float64(len(rs))
}

var _ = Describe("Race", func() {
	ctx := context.Background()

	Describe("pacing on a flat 15 km course", func() {
		It("finishes the paced rider ahead of the full-gas rider", func() {
			m, err := race.New(course.MustNew(course.Segment{Length: 15}), []sim.RiderConfig{tt("paced"), tt("gas")})
			Expect(err).NotTo(HaveOccurred())

			paced, _ := m.Rider("paced")
			gas, _ := m.Rider("gas")
			paced.SetEffort(sim.Watts(470))
			gas.SetEffort(sim.Fraction(1.0))

			Expect(m.RunToFinish(ctx)).To(Succeed())
			Expect(paced.Finished()).To(BeTrue())
			Expect(paced.Distance()).To(Equal(15.0))
			Expect(paced.FinishTime()).To(BeNumerically("<", gas.FinishTime()))
			Expect(gas.InRedzone()).To(BeTrue())
		})
	})

	Describe("a cooperating paceline on a hilly 95 km course", func() {
		It("beats the same riders going it alone", func() {
			group := names("pace", 5, tt)
			solos := lo.Map(names("solo", 5, tt), func(c sim.RiderConfig, _ int) sim.RiderConfig {
				c.Passive = true
				return c
			})

			m, err := race.New(hilly(), append(append([]sim.RiderConfig(nil), group...), solos...))
			Expect(err).NotTo(HaveOccurred())

			pace := pick(m, group)
			alone := pick(m, solos)
			for _, r := range alone {
				r.SetEffort(sim.Watts(420))
			}
			_, err = m.MakeGroup(race.KindPaceline, 420, pace...)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.RunToFinish(ctx)).To(Succeed())
			Expect(m.Groups()).To(BeEmpty())
			Expect(meanFinish(pace)).To(BeNumerically("<", meanFinish(alone)))
		})
	})

	Describe("a solo breakaway against a chase group", func() {
		var (
			m     *race.Manager
			solo  *sim.Rider
			chase []*sim.Rider
		)

		BeforeEach(func() {
			chasers := names("chase", 4, tt)
			var err error
			m, err = race.New(hilly(), append([]sim.RiderConfig{tt("break")}, chasers...))
			Expect(err).NotTo(HaveOccurred())

			solo, _ = m.Rider("break")
			solo.SetEffort(sim.Watts(340))
			chase = pick(m, chasers)
			_, err = m.MakeGroup(race.KindPaceline, 340, chase...)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.RunTo(ctx, race.Kilometers(70))).To(Succeed())
		})

		It("keeps the chase within 40 m at 70 km", func() {
			far := lo.MaxBy(chase, func(a, b *sim.Rider) bool { return a.Distance() > b.Distance() })
			near := lo.MinBy(chase, func(a, b *sim.Rider) bool { return a.Distance() < b.Distance() })
			Expect((far.Distance() - near.Distance()) * 1000).To(BeNumerically("<", 40))
			Expect(far.Group()).NotTo(BeNil())
			Expect(far.Group().Size()).To(Equal(4))
		})

		It("leaves every chaser with more fuel than the breakaway", func() {
			for _, r := range chase {
				Expect(r.FuelPercent()).To(BeNumerically(">", solo.FuelPercent()), r.Name())
			}
		})
	})

	Describe("coasting down a 12% descent", func() {
		It("beats a full-gas flat ride of the same length by 8 to 14 minutes", func() {
			down, err := race.New(course.MustNew(course.Segment{Length: 15, Gradient: -0.12}), []sim.RiderConfig{sprinter("s")})
			Expect(err).NotTo(HaveOccurred())
			coaster, _ := down.Rider("s")
			coaster.SetEffort(sim.Fraction(0.01))
			Expect(down.RunToFinish(ctx)).To(Succeed())

			level, err := race.New(course.MustNew(course.Segment{Length: 15}), []sim.RiderConfig{sprinter("s")})
			Expect(err).NotTo(HaveOccurred())
			flatOut, _ := level.Rider("s")
			flatOut.SetEffort(sim.Fraction(1.0))
			Expect(level.RunToFinish(ctx)).To(Succeed())

			saved := (flatOut.FinishTime() - coaster.FinishTime()) / 60
			Expect(saved).To(BeNumerically(">=", 8))
			Expect(saved).To(BeNumerically("<=", 14))
			Expect(coaster.AveragePower()).To(BeNumerically("<", 20))
			Expect(flatOut.AveragePower()).To(BeNumerically(">=", 250))
			Expect(flatOut.AveragePower()).To(BeNumerically("<=", 400))
		})
	})
})
