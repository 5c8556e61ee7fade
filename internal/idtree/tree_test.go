package idtree_test

import (
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinetree/internal/idtree"
)

func collect(seq func(func(*idtree.Node[string]) bool)) []string {
	var out []string
	for n := range seq {
		out = append(out, n.Data)
	}
	return out
}

var _ = Describe("Tree", func() {
	var (
		tree           *idtree.Tree[string]
		n0, n1, n2, n3 idtree.NodeID
	)

	BeforeEach(func() {
		tree = idtree.New[string]()
		n0 = tree.CreateNode("base")
		n1 = tree.CreateNode("shoulder")
		n2 = tree.CreateNode("elbow")
		n3 = tree.CreateNode("camera")
		tree.SetParentChild(n0, n1)
		tree.SetParentChild(n1, n2)
		tree.SetParentChild(n1, n3)
	})

	Describe("CreateNode", func() {
		It("hands out dense ids starting at zero", func() {
			Expect([]idtree.NodeID{n0, n1, n2, n3}).To(Equal([]idtree.NodeID{0, 1, 2, 3}))
		})

		It("counts every created node", func() {
			t := idtree.New[int]()
			for i := range 17 {
				t.CreateNode(i)
			}
			Expect(t.Len()).To(Equal(17))
			count := 0
			for range t.All() {
				count++
			}
			Expect(count).To(Equal(17))
		})
	})

	Describe("SetParentChild", func() {
		It("keeps parent and children consistent", func() {
			p, ok := tree.Get(n2).Parent()
			Expect(ok).To(BeTrue())
			Expect(p).To(Equal(n1))
			Expect(tree.Get(n1).Children()).To(Equal([]idtree.NodeID{n2, n3}))
			Expect(tree.Get(n2).Children()).To(BeEmpty())
		})

		It("lists a child exactly once under its parent", func() {
			for n := range tree.All() {
				if p, ok := n.Parent(); ok {
					matches := 0
					for _, c := range tree.Get(p).Children() {
						if c == n.ID {
							matches++
						}
					}
					Expect(matches).To(Equal(1))
				}
			}
		})

		It("leaves the root without a parent", func() {
			_, ok := tree.Get(n0).Parent()
			Expect(ok).To(BeFalse())
			Expect(tree.Get(n0).IsRoot()).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("allows the payload to be mutated in place", func() {
			tree.Get(n1).Data = "upper_arm"
			Expect(tree.Get(n1).Data).To(Equal("upper_arm"))
		})

		It("panics on an id the tree never issued", func() {
			Expect(func() { tree.Get(42) }).To(Panic())
			Expect(func() { tree.Get(idtree.None) }).To(Panic())
		})
	})

	Describe("All", func() {
		It("walks in creation order", func() {
			Expect(collect(tree.All())).To(Equal([]string{"base", "shoulder", "elbow", "camera"}))
		})

		It("supports mutation of every payload", func() {
			for n := range tree.All() {
				n.Data += "_"
			}
			Expect(collect(tree.All())).To(Equal([]string{"base_", "shoulder_", "elbow_", "camera_"}))
		})
	})

	Describe("Ancestors", func() {
		DescribeTable("ends at the root with depth+1 entries",
			func(id func() idtree.NodeID, want []string) {
				got := collect(tree.Ancestors(id()))
				Expect(got).To(Equal(want))
				Expect(got).To(HaveLen(tree.Depth(id()) + 1))
				last := tree.Get(id())
				for n := range tree.Ancestors(id()) {
					last = n
				}
				Expect(last.IsRoot()).To(BeTrue())
			},
			Entry("root", func() idtree.NodeID { return n0 }, []string{"base"}),
			Entry("leaf", func() idtree.NodeID { return n2 }, []string{"elbow", "shoulder", "base"}),
			Entry("sibling leaf", func() idtree.NodeID { return n3 }, []string{"camera", "shoulder", "base"}),
		)

		It("is restartable", func() {
			seq := tree.Ancestors(n3)
			Expect(collect(seq)).To(Equal(collect(seq)))
		})
	})

	Describe("Descendants", func() {
		It("visits the whole subtree in insertion order", func() {
			Expect(collect(tree.Descendants(n0))).To(Equal([]string{"base", "shoulder", "elbow", "camera"}))
			Expect(collect(tree.Descendants(n1))).To(Equal([]string{"shoulder", "elbow", "camera"}))
			Expect(collect(tree.Descendants(n3))).To(Equal([]string{"camera"}))
		})

		It("produces every node before its children", func() {
			wide := idtree.New[string]()
			ids := make([]idtree.NodeID, 0, 64)
			for range 64 {
				ids = append(ids, wide.CreateNode(""))
			}
			// parents are created after their children, so creation order is
			// not a valid tree order
			for i := 0; i < len(ids)-1; i++ {
				parent := ids[i+1+(i*7)%(len(ids)-1-i)]
				wide.SetParentChild(parent, ids[i])
			}
			Expect(wide.Root()).To(Equal(ids[len(ids)-1]))
			var seen []idtree.NodeID
			for n := range wide.Descendants(wide.Root()) {
				if p, ok := n.Parent(); ok {
					Expect(slices.Contains(seen, p)).To(BeTrue(), "parent %v after child %v", p, n.ID)
				}
				seen = append(seen, n.ID)
			}
			Expect(seen).To(HaveLen(64))
		})

		It("stops early when the consumer breaks", func() {
			count := 0
			for range tree.Descendants(n0) {
				count++
				if count == 2 {
					break
				}
			}
			Expect(count).To(Equal(2))
		})

		It("handles deep chains without recursion", func() {
			deep := idtree.New[int]()
			prev := deep.CreateNode(0)
			for i := 1; i < 100000; i++ {
				next := deep.CreateNode(i)
				deep.SetParentChild(prev, next)
				prev = next
			}
			count := 0
			for range deep.Descendants(deep.Root()) {
				count++
			}
			Expect(count).To(Equal(100000))
			Expect(deep.Depth(prev)).To(Equal(99999))
		})
	})

	Describe("Root", func() {
		It("finds the parentless node", func() {
			Expect(tree.Root()).To(Equal(n0))
		})

		It("panics with ErrNoRoot on an empty tree", func() {
			empty := idtree.New[string]()
			Expect(func() { empty.Root() }).To(PanicWith(idtree.ErrNoRoot))
		})

		It("lists every parentless node", func() {
			Expect(tree.Roots()).To(Equal([]idtree.NodeID{n0}))
			stray := tree.CreateNode("stray")
			Expect(tree.Roots()).To(Equal([]idtree.NodeID{n0, stray}))
			Expect(idtree.New[string]().Roots()).To(BeEmpty())
		})
	})

	Describe("PathFromRoot", func() {
		It("returns ids from the root down to the node", func() {
			Expect(tree.PathFromRoot(n3)).To(Equal([]idtree.NodeID{n0, n1, n3}))
			Expect(tree.PathFromRoot(n0)).To(Equal([]idtree.NodeID{n0}))
		})
	})
})
