package permission_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
)

func TestPermissionDatamodel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Datamodel Suite")
}

var _ = Describe("RoleFromSet", func() {
	It("should derive Admin from admin panel plus edit permissions", func() {
		role := permission.RoleFromSet(permission.Set{
			AdminPanel:      true,
			EditPermissions: true,
		})
		Expect(role).To(Equal(person.RoleAdmin))
	})

	It("should not derive Admin from admin panel alone", func() {
		role := permission.RoleFromSet(permission.Set{AdminPanel: true})
		Expect(role).To(Equal(person.RoleAlumno))
	})

	It("should derive Profesor from view others history", func() {
		role := permission.RoleFromSet(permission.Set{
			ViewOthersHistory: true,
		})
		Expect(role).To(Equal(person.RoleProfesor))
	})

	It("should prefer Admin over Profesor when both apply", func() {
		role := permission.RoleFromSet(permission.Set{
			ViewOthersHistory: true,
			AdminPanel:        true,
			EditPermissions:   true,
		})
		Expect(role).To(Equal(person.RoleAdmin))
	})

	It("should default to Alumno for the empty set", func() {
		Expect(permission.RoleFromSet(permission.Set{})).To(Equal(person.RoleAlumno))
	})

	It("should be total over every flag combination", func() {
		for mask := 0; mask < 32; mask++ {
			set := permission.Set{
				Dashboard:         mask&1 != 0,
				ViewOwnHistory:    mask&2 != 0,
				ViewOthersHistory: mask&4 != 0,
				AdminPanel:        mask&8 != 0,
				EditPermissions:   mask&16 != 0,
			}
			role := permission.RoleFromSet(set)
			Expect(role).To(BeElementOf(person.RoleAdmin, person.RoleProfesor, person.RoleAlumno))
		}
	})
})

var _ = Describe("DefaultsForRole", func() {
	It("should grant everything to Admin", func() {
		set := permission.DefaultsForRole(person.RoleAdmin)
		Expect(set.Dashboard).To(BeTrue())
		Expect(set.ViewOwnHistory).To(BeTrue())
		Expect(set.ViewOthersHistory).To(BeTrue())
		Expect(set.AdminPanel).To(BeTrue())
		Expect(set.EditPermissions).To(BeTrue())
	})

	It("should grant history visibility but no administration to Profesor", func() {
		set := permission.DefaultsForRole(person.RoleProfesor)
		Expect(set.ViewOthersHistory).To(BeTrue())
		Expect(set.AdminPanel).To(BeFalse())
		Expect(set.EditPermissions).To(BeFalse())
	})

	It("should grant only own visibility to Alumno", func() {
		set := permission.DefaultsForRole(person.RoleAlumno)
		Expect(set.Dashboard).To(BeTrue())
		Expect(set.ViewOwnHistory).To(BeTrue())
		Expect(set.ViewOthersHistory).To(BeFalse())
		Expect(set.AdminPanel).To(BeFalse())
	})

	It("should round-trip through role derivation", func() {
		for _, role := range []person.Role{person.RoleAdmin, person.RoleProfesor, person.RoleAlumno} {
			Expect(permission.RoleFromSet(permission.DefaultsForRole(role))).To(Equal(role))
		}
	})
})

var _ = Describe("None", func() {
	It("should carry the person id and no flags", func() {
		set := permission.None("p-1")
		Expect(set.PersonID).To(Equal("p-1"))
		Expect(set.Dashboard).To(BeFalse())
		Expect(set.ViewOwnHistory).To(BeFalse())
		Expect(set.ViewOthersHistory).To(BeFalse())
		Expect(set.AdminPanel).To(BeFalse())
		Expect(set.EditPermissions).To(BeFalse())
	})
})
