package authorize

type permission struct {
	Role   Role
	Object Resource
	Action Action
}

// seed installs the baseline role permissions. Policies are static and
// in-process; there is no runtime grant surface.
func (a *Authorization) seed() error {
	policies := []permission{
		// Admin: full back-office control
		{RoleAdmin, WildcardResource, WildcardAction},

		// Doctor: own schedule, appointments, and clinical records
		{RoleDoctor, ResourceSchedule, ActionManage},
		{RoleDoctor, ResourceAppointment, ActionRead},
		{RoleDoctor, ResourceAppointment, ActionList},
		{RoleDoctor, ResourceAppointment, ActionUpdate},
		{RoleDoctor, ResourceConsultation, ActionManage},
		{RoleDoctor, ResourcePayment, ActionRead},
		{RoleDoctor, ResourcePayment, ActionList},
		{RoleDoctor, ResourcePatient, ActionRead},
		{RoleDoctor, ResourcePatient, ActionList},
		{RoleDoctor, ResourceDoctor, ActionRead},
		{RoleDoctor, ResourceDoctor, ActionList},
		{RoleDoctor, ResourceDashboard, ActionRead},

		// Patient: book and follow own care
		{RolePatient, ResourceDoctor, ActionRead},
		{RolePatient, ResourceDoctor, ActionList},
		{RolePatient, ResourceSchedule, ActionRead},
		{RolePatient, ResourceAppointment, ActionCreate},
		{RolePatient, ResourceAppointment, ActionRead},
		{RolePatient, ResourceAppointment, ActionList},
		{RolePatient, ResourceAppointment, ActionUpdate},
		{RolePatient, ResourceConsultation, ActionRead},
		{RolePatient, ResourceConsultation, ActionList},
		{RolePatient, ResourcePayment, ActionCreate},
		{RolePatient, ResourcePayment, ActionRead},
		{RolePatient, ResourcePayment, ActionList},
	}

	for _, p := range policies {
		if _, err := a.enforcer.AddPolicy(string(p.Role), string(p.Object), string(p.Action)); err != nil {
			return err
		}
	}
	return nil
}
